package game

// Replay rebuilds a game state from an append-only event log. The log is the
// single source of truth: every mutation the engine performs is recorded with
// enough detail to reproduce it here. Details values tolerate both in-process
// Go types and JSON round-tripped ones (float64 numbers, []any slices).
func Replay(gameID string, events []Event) (*State, error) {
	s := NewState(gameID)
	for _, ev := range events {
		if err := s.apply(ev); err != nil {
			return nil, err
		}
		s.log = append(s.log, ev)
	}
	return s, nil
}

func (s *State) apply(ev Event) error {
	d := ev.Details
	switch ev.Kind {
	case EventGameSetup:
		rows, _ := anySlice(d["players"])
		for _, row := range rows {
			m, ok := row.(map[string]any)
			if !ok {
				continue
			}
			id, _ := m["id"].(string)
			name, _ := m["name"].(string)
			roleStr, _ := m["role"].(string)
			seat, _ := anyInt(m["seat"])
			p := &Player{ID: id, Name: name, Seat: seat, Role: Role(roleStr), Status: StatusAlive}
			switch p.Role {
			case RoleWitch:
				p.Witch = &WitchAbility{HasSavePotion: true, HasPoisonPotion: true}
			case RoleHunter:
				p.Hunter = &HunterAbility{CanShoot: true}
			}
			if err := s.registerPlayer(p); err != nil {
				return err
			}
		}

	case EventPhaseChange:
		if phase, ok := d["phase"].(string); ok {
			s.Phase = Phase(phase)
		}

	case EventNightReset:
		if day, ok := anyInt(d["day"]); ok {
			s.Day = day
		}
		s.Phase = PhaseNightStart
		s.Night = NightRecord{}
		s.Nominations = make(map[int]string)
		s.roundDeaths = nil
		for _, p := range s.Players() {
			p.PoisonedThisRound = false
		}

	case EventRoundReset:
		s.Phase = PhaseDayStart
		s.Round = RoundRecord{Votes: make(map[string]string)}

	case EventStatusUpdate:
		id, _ := d["player"].(string)
		statusStr, _ := d["new_status"].(string)
		if p := s.Player(id); p != nil {
			p.Status = Status(statusStr)
			if p.Status == StatusDead {
				s.roundDeaths = append(s.roundDeaths, id)
			}
		}

	case EventWolfNomination:
		wolfID, _ := d["wolf"].(string)
		target, _ := d["target"].(string)
		if wolf := s.Player(wolfID); wolf != nil {
			s.Nominations[wolf.Seat] = target
		}

	case EventIntendedKill:
		s.Night.IntendedKill, _ = d["target"].(string)

	case EventPotionUsed:
		witchID, _ := d["player"].(string)
		potion, _ := d["potion"].(string)
		target, _ := d["target"].(string)
		if p := s.Player(witchID); p != nil && p.Witch != nil {
			switch potion {
			case "save":
				p.Witch.HasSavePotion = false
				s.Night.WitchSaved = target
			case "poison":
				p.Witch.HasPoisonPotion = false
				s.Night.WitchPoisoned = target
			}
		}

	case EventPoisonMark:
		id, _ := d["player"].(string)
		if p := s.Player(id); p != nil {
			p.PoisonedThisRound = true
		}

	case EventSeerResult:
		seerID, _ := d["player"].(string)
		target, _ := d["target"].(string)
		isWolf, _ := d["is_wolf"].(bool)
		day, _ := anyInt(d["day"])
		if p := s.Player(seerID); p != nil {
			p.SeerChecks = append(p.SeerChecks, SeerCheck{Day: day, Target: target, IsWolf: isWolf})
		}
		s.Night.SeerTarget = target
		s.Night.SeerSawWolf = isWolf
		s.Night.SeerChecked = true

	case EventHunterShot:
		id, _ := d["player"].(string)
		if p := s.Player(id); p != nil && p.Hunter != nil {
			p.Hunter.CanShoot = false
		}

	case EventNightResolution:
		deaths, _ := stringSlice(d["deaths"])
		s.Night.Deaths = deaths

	case EventDeathsProcessed:
		s.roundDeaths = nil

	case EventSpeechOrder:
		s.Round.SpeechOrder, _ = stringSlice(d["order"])

	case EventPlayerMessage:
		id, _ := d["player"].(string)
		p := s.Player(id)
		if p == nil {
			return nil
		}
		entry := HistoryEntry{}
		entry.Role, _ = d["role"].(string)
		entry.Content, _ = d["content"].(string)
		meta := HistoryMeta{}
		meta.ActionType, _ = d["action_type"].(string)
		meta.IsErrorResponse, _ = d["is_error_response"].(bool)
		meta.IsAcceptedInvalid, _ = d["is_accepted_invalid"].(bool)
		meta.IsOverride, _ = d["is_override"].(bool)
		if meta != (HistoryMeta{}) {
			entry.Meta = &meta
		}
		p.History = append(p.History, entry)

	case EventSpeechTaken:
		id, _ := d["player"].(string)
		text, _ := d["text"].(string)
		if p := s.Player(id); p != nil {
			s.Round.Speeches = append(s.Round.Speeches, SpeechRecord{PlayerID: id, Text: text})
			s.LastSpeakerSeat = p.Seat
		}

	case EventVoteCast:
		voter, _ := d["voter"].(string)
		target, _ := d["target"].(string)
		if s.Round.Votes == nil {
			s.Round.Votes = make(map[string]string)
		}
		s.Round.Votes[voter] = target

	case EventGameOver:
		s.Winner, _ = d["winner"].(string)
		s.WinnerReason = ev.Message
		s.Phase = PhaseGameOver
	}
	return nil
}

func anyInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	}
	return 0, false
}

func anySlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

func stringSlice(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out, true
	}
	return nil, false
}
