package broker

import "strings"

// ActionType identifies one kind of requested decision.
type ActionType string

const (
	ActionSpeech       ActionType = "speech"
	ActionLastWords    ActionType = "last_words"
	ActionVote         ActionType = "vote"
	ActionWolfNominate ActionType = "wolf_nominate"
	ActionWolfKill     ActionType = "wolf_kill"
	ActionSeerCheck    ActionType = "seer_check"
	ActionWitchSave    ActionType = "witch_save"
	ActionWitchPoison  ActionType = "witch_poison"
	ActionHunterShoot  ActionType = "hunter_shoot"
)

// ActionInfo carries per-action extras the validator or context builder needs.
type ActionInfo struct {
	// DecisionMakerID is the decision-maker wolf, for nomination context.
	DecisionMakerID string
	// KilledPlayerID is the intended kill target shown to the witch.
	KilledPlayerID string
}

// ValueKind classifies a committed decision value.
type ValueKind string

const (
	ValueNone    ValueKind = "none"    // explicit no-action
	ValueTarget  ValueKind = "target"  // a resolved player target
	ValueText    ValueKind = "text"    // free text (speech, last words)
	ValueYes     ValueKind = "yes"     // witch_save consent
	ValueNo      ValueKind = "no"      // witch_save refusal
	ValueAbstain ValueKind = "abstain" // vote skip sentinel
	ValueRaw     ValueKind = "raw"     // committed verbatim despite failing validation
)

// Value is a typed, committed decision.
type Value struct {
	Kind     ValueKind
	TargetID string
	Text     string
}

// IsNoAction reports whether the value commits no game effect.
func (v Value) IsNoAction() bool {
	return v.Kind == ValueNone || v.Kind == ValueNo || v.Kind == ValueAbstain
}

// SynonymTable maps each action type to the phrases accepted as its canonical
// no-action response. The table lives outside the validation logic so callers
// can extend it (e.g. for another language) without touching the rules.
type SynonymTable map[ActionType][]string

// DefaultSynonyms returns the built-in no-action phrase table. The Chinese
// phrases mirror the prompts the upstream game used; the English ones cover
// manual moderator entry.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		ActionVote:         {"skip", "pass", "abstain", "弃票"},
		ActionWolfNominate: {"no target", "skip", "pass", "不刀", "无法袭击", "空刀", "空过", "本回合不行动", "不提名", "跳过"},
		ActionWolfKill:     {"no target", "skip", "pass", "不刀", "无法袭击", "空刀", "空过", "本回合不行动"},
		ActionSeerCheck:    {"decline", "skip", "不验", "跳过", "无法查验", "不查验"},
		ActionWitchPoison:  {"decline", "skip", "不使用", "不用", "不使用毒药", "没有毒药"},
		ActionHunterShoot:  {"decline", "skip", "不开枪", "无法开枪", "不射击", "不使用此能力"},
	}
}

// yesPhrases and noPhrases answer the witch_save yes/no question.
var (
	yesPhrases = []string{"yes", "y", "save", "是", "救", "使用解药"}
	noPhrases  = []string{"no", "n", "否", "不救", "没有解药", "不使用解药"}
)

// cleanKeyword normalizes a response for keyword matching: trimmed, lowered,
// stripped of trailing punctuation.
func cleanKeyword(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.Trim(s, ".。！!?？【】\"'` ")
}

func matchesAny(cleaned string, phrases []string) bool {
	for _, p := range phrases {
		if cleaned == p {
			return true
		}
	}
	return false
}

// IsNoActionPhrase reports whether raw matches a no-action synonym for action.
func (t SynonymTable) IsNoActionPhrase(action ActionType, raw string) bool {
	return matchesAny(cleanKeyword(raw), t[action])
}
