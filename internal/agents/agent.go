// Package agents implements the reasoning agents. Each agent prompts the
// reasoning provider, decodes and validates the structured answer, and
// returns a normalized opinion.
package agents

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/matchday-consensus/internal/config"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
)

// Agent produces one opinion about a fixture
type Agent interface {
	Kind() models.AgentKind
	Run(ctx context.Context, in *Input) (*models.AgentOpinion, error)
}

// Input is what an agent sees. Prior holds earlier-phase opinions and is
// only populated for phase 2 agents.
type Input struct {
	Match    *models.MatchContext
	Prior    map[models.AgentKind]*models.AgentOpinion
	Language string
}

// Config holds the per-agent request settings
type Config struct {
	DefaultModel string
	Models       map[models.AgentKind]string
	Temperature  float64
	MaxTokens    int
	Language     string
}

// FromConfig builds agent settings from the reasoning and app sections
func FromConfig(cfg *config.Config) Config {
	c := Config{
		DefaultModel: cfg.Reasoning.Model,
		Models:       make(map[models.AgentKind]string, len(cfg.Reasoning.AgentModels)),
		Temperature:  cfg.Reasoning.Temperature,
		MaxTokens:    cfg.Reasoning.MaxTokens,
		Language:     cfg.App.Language,
	}
	for k := range cfg.Reasoning.AgentModels {
		c.Models[models.AgentKind(k)] = cfg.Reasoning.ModelFor(k)
	}
	return c
}

// ModelFor returns the model for an agent
func (c Config) ModelFor(kind models.AgentKind) string {
	if m, ok := c.Models[kind]; ok && m != "" {
		return m
	}
	return c.DefaultModel
}

var validate = validator.New()

// caller holds what every agent needs to talk to the provider
type caller struct {
	kind   models.AgentKind
	client reasoning.Client
	cfg    Config
}

func (c caller) Kind() models.AgentKind { return c.kind }

func (c caller) language(in *Input) string {
	if in != nil && in.Language != "" {
		return in.Language
	}
	return c.cfg.Language
}

// ask sends the prompt, decodes the answer into out and validates it
func (c caller) ask(ctx context.Context, in *Input, system, user string, out any) error {
	// out is reset on every attempt so a rejected completion leaves nothing behind
	decode := func(raw string) error {
		v := reflect.ValueOf(out).Elem()
		v.Set(reflect.Zero(v.Type()))
		if err := reasoning.DecodeLenient(raw, out); err != nil {
			return err
		}
		if err := validate.Struct(out); err != nil {
			return malformed(c.kind, err)
		}
		return nil
	}

	raw, err := c.client.Complete(ctx, reasoning.Request{
		Model:       c.cfg.ModelFor(c.kind),
		System:      system + languageInstruction(c.language(in)),
		User:        user,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Accept:      decode,
	})
	if err != nil {
		return err
	}
	return decode(raw)
}

func malformed(kind models.AgentKind, err error) error {
	return fmt.Errorf("%w: %s: %v", reasoning.ErrMalformedOutput, kind, err)
}

func checkInput(in *Input) error {
	if in == nil || in.Match == nil {
		return models.ErrInvalidMatch
	}
	return nil
}
