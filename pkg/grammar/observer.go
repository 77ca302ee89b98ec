package grammar

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spicery/pdxlua/pkg/lexer"
)

// Observer receives progress events while statements are built. It is
// scoped to one Parser or StatementBuilder; nothing is recorded globally.
type Observer interface {
	// Candidates reports the rules left after comparing tok against
	// signature position k.
	Candidates(k int, tok lexer.Token, rules []string)
	// Selected reports the winning rule and how many tokens were read to
	// choose it.
	Selected(rule string, lookahead int)
	Consumed(rule, field string, tok lexer.Token)
	// RepeatEnded reports a repeat that stopped matching. tok is the zero
	// token at end of input.
	RepeatEnded(rule string, tok lexer.Token)
	Completed(stmt *Statement)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) Candidates(int, lexer.Token, []string) {}
func (NopObserver) Selected(string, int)                  {}
func (NopObserver) Consumed(string, string, lexer.Token)  {}
func (NopObserver) RepeatEnded(string, lexer.Token)       {}
func (NopObserver) Completed(*Statement)                  {}

// LogObserver writes events as debug records. Every record carries the same
// parse id so that interleaved output from several parses can be separated.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an observer logging to logger under a fresh parse id.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger.With(slog.String("parse", uuid.NewString()))}
}

func (o *LogObserver) debug(msg string, attrs ...slog.Attr) {
	o.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

func (o *LogObserver) Candidates(k int, tok lexer.Token, rules []string) {
	o.debug("candidates",
		slog.Int("position", k),
		slog.String("token", tok.String()),
		slog.Any("rules", rules))
}

func (o *LogObserver) Selected(rule string, lookahead int) {
	o.debug("selected", slog.String("rule", rule), slog.Int("lookahead", lookahead))
}

func (o *LogObserver) Consumed(rule, field string, tok lexer.Token) {
	attrs := []slog.Attr{
		slog.String("rule", rule),
		slog.String("token", tok.String()),
		slog.String("pos", tok.Pos.String()),
	}
	if field != "" {
		attrs = append(attrs, slog.String("field", field))
	}
	o.debug("consumed", attrs...)
}

func (o *LogObserver) RepeatEnded(rule string, tok lexer.Token) {
	next := "end of input"
	if tok != (lexer.Token{}) {
		next = tok.String()
	}
	o.debug("repeat ended", slog.String("rule", rule), slog.String("next", next))
}

func (o *LogObserver) Completed(stmt *Statement) {
	o.debug("completed",
		slog.String("rule", stmt.Rule),
		slog.String("pos", stmt.Pos.String()),
		slog.Any("fields", stmt.FieldNames()))
}

// Option configures a Parser or StatementBuilder.
type Option func(*options)

type options struct {
	observer Observer
	config   *lexer.Config
}

func buildOptions(opts []Option) options {
	o := options{observer: NopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithObserver installs an observer. A nil observer is ignored.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLexerConfig sets the lexer configuration used by NewParser and Parse.
func WithLexerConfig(cfg *lexer.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}
