package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
)

// MessagesAPI is the subset of the Anthropic client used by LLMPolicy.
type MessagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// LLMConfig tunes LLMPolicy.
type LLMConfig struct {
	Model     string
	MaxTokens int64
	Timeout   time.Duration
}

var abilityWord = regexp.MustCompile(`(?i)\b(basic|skill|ultimate)\b`)

const llmSystemPrompt = "You are playing a turn-based card battle. Each turn you use your active " +
	"character's basic (1 damage), skill (3 damage) or ultimate (4 damage) ability. " +
	"Shields absorb damage before hit points. Answer with exactly one word: basic, skill or ultimate."

// LLMPolicy asks a language model which ability to use. Any failure, timeout
// or unparseable reply defers to fallback. It never switches on its own; switch
// decisions come from fallback.
type LLMPolicy struct {
	api      MessagesAPI
	cfg      LLMConfig
	fallback battle.DecisionPolicy
	logger   *zap.Logger
}

// NewLLMPolicy constructs an LLMPolicy.
//
// Precondition: api, fallback and logger must not be nil; cfg.Model non-empty.
func NewLLMPolicy(api MessagesAPI, cfg LLMConfig, fallback battle.DecisionPolicy, logger *zap.Logger) *LLMPolicy {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 16
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &LLMPolicy{api: api, cfg: cfg, fallback: fallback, logger: logger}
}

func (p *LLMPolicy) ChooseAbility(ctx context.Context, view battle.Snapshot, self battle.Side) battle.AbilityKind {
	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	msg, err := p.api.New(reqCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: p.cfg.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: llmSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(DescribeTurn(view, self))),
		},
	})
	if err != nil {
		p.logger.Warn("llm policy request failed", zap.Error(err))
		return p.fallback.ChooseAbility(ctx, view, self)
	}
	var reply strings.Builder
	for _, block := range msg.Content {
		reply.WriteString(block.Text)
	}
	m := abilityWord.FindStringSubmatch(reply.String())
	if m == nil {
		p.logger.Warn("llm policy reply unusable", zap.String("reply", reply.String()))
		return p.fallback.ChooseAbility(ctx, view, self)
	}
	return battle.AbilityKind(strings.ToLower(m[1]))
}

func (p *LLMPolicy) ChooseCharacterSwitch(ctx context.Context, view battle.Snapshot, self battle.Side) (int, bool) {
	return p.fallback.ChooseCharacterSwitch(ctx, view, self)
}

// DescribeTurn renders the state self sees as a short prompt.
func DescribeTurn(view battle.Snapshot, self battle.Side) string {
	me, them := view.Players[self], view.Players[self.Opponent()]
	var b strings.Builder
	fmt.Fprintf(&b, "Turn %d.\n", view.TurnNumber)
	fmt.Fprintf(&b, "Your active character: %s\n", describeCharacter(me.Active()))
	fmt.Fprintf(&b, "Enemy active character: %s\n", describeCharacter(them.Active()))
	b.WriteString("Which ability do you use?")
	return b.String()
}

func describeCharacter(c battle.CharacterView) string {
	return fmt.Sprintf("%s (%s, hp %d, shield %d)", c.Name, c.Element, c.HP, c.Shield)
}
