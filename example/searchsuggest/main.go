// Command searchsuggest simulates a user typing into a search box. Every keystroke dispatches a
// take-latest suggestion lookup, so only the lookup for the final query may update the state.
// A profile load is started and cancelled on the way to show explicit cancellation.
//
// Committed mutations go to the Postgres journal when ACTIONS_JOURNAL_DSN is set and to an
// in-memory journal otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AntonStoeckl/cancellable-actions-go/actions"
	"github.com/AntonStoeckl/cancellable-actions-go/config"
	"github.com/AntonStoeckl/cancellable-actions-go/journal"
	"github.com/AntonStoeckl/cancellable-actions-go/store"
)

type State struct {
	Query       string
	Suggestions []string
	Profile     string
}

type Config struct {
	Query        string
	Latency      time.Duration
	TypingPause  time.Duration
	Verbose      bool
	WithProfiles bool
}

var dictionary = []string{"lemming", "lemon", "lennin", "lens", "leonard", "lentil"}

func main() {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	j, closeJournal, err := openJournal(ctx, logger)
	if err != nil {
		log.Fatalf("Failed to open journal: %v", err)
	}
	defer func() {
		if err := closeJournal(); err != nil {
			log.Printf("Error closing journal: %v", err)
		}
	}()

	canceller, err := actions.NewCanceller(actions.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create canceller: %v", err)
	}

	s, err := store.NewStore(
		State{},
		mutations(),
		actions.MakeCancellable(canceller, actionMap(cfg)),
		store.WithJournal(j),
		store.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	if cfg.WithProfiles {
		profile := s.DispatchAsync(ctx, "loadProfile", "lennin")
		canceller.CancelAction(profile.ID())
		log.Printf("Profile load: %s", profile.Wait().Kind)
	}

	pendings := make([]*store.Pending, 0, len(cfg.Query))
	for i := 1; i <= len(cfg.Query); i++ {
		pendings = append(pendings, s.DispatchAsync(ctx, "suggest", cfg.Query[:i]))

		select {
		case <-ctx.Done():
			log.Printf("Interrupted while typing")
			return
		case <-time.After(cfg.TypingPause):
		}
	}

	for _, p := range pendings {
		outcome, err := p.WaitContext(ctx)
		if err != nil {
			log.Printf("Interrupted while waiting: %v", err)
			return
		}

		if _, err := outcome.Result(); err != nil && !outcome.IsCancelled() {
			log.Printf("Lookup %s failed: %v", p.ID(), err)
		}
	}

	state := s.State()
	log.Printf("Query %q -> suggestions %v, profile %q", state.Query, state.Suggestions, state.Profile)

	entries, err := j.Query(ctx, journal.BuildFilter().WithMutationTypes("setSuggestions").Finalize())
	if err != nil {
		log.Printf("Failed to query journal: %v", err)
		return
	}
	log.Printf("Journal holds %d suggestion commits", len(entries))
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Query, "query", "lennin", "text typed into the search box, one keystroke at a time")
	flag.DurationVar(&cfg.Latency, "latency", 100*time.Millisecond, "simulated latency of a suggestion lookup")
	flag.DurationVar(&cfg.TypingPause, "typing-pause", 20*time.Millisecond, "pause between two keystrokes")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log every invocation at debug level")
	flag.BoolVar(&cfg.WithProfiles, "profile", true, "start and cancel a profile load before typing")
	flag.Parse()

	return cfg
}

func openJournal(ctx context.Context, logger *slog.Logger) (journal.Journal, func() error, error) {
	journalCfg, err := config.LoadJournalConfig()
	if err != nil {
		return nil, nil, err
	}

	pgJournal, closeFn, err := config.OpenJournal(ctx, journalCfg)
	if errors.Is(err, config.ErrJournalDisabled) {
		logger.Info("no journal dsn configured, journaling in memory")
		return journal.NewMemoryJournal(), func() error { return nil }, nil
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Info("journaling to postgres", "table", pgJournal.TableName(), "driver", journalCfg.Driver)

	return pgJournal, closeFn, nil
}

func mutations() map[string]store.MutationFunc[State] {
	return map[string]store.MutationFunc[State]{
		"setSuggestions": func(s State, payload any) (State, error) {
			result, ok := payload.(suggestions)
			if !ok {
				return s, fmt.Errorf("setSuggestions: unexpected payload %T", payload)
			}
			s.Query = result.Query
			s.Suggestions = result.Matches
			return s, nil
		},
		"setProfile": func(s State, payload any) (State, error) {
			s.Profile, _ = payload.(string)
			return s, nil
		},
	}
}

type suggestions struct {
	Query   string   `json:"query"`
	Matches []string `json:"matches"`
}

func actionMap(cfg Config) actions.Map[State] {
	return actions.Map[State]{
		"suggest": actions.TakeLatest(func(ac *actions.Context[State], payload any) (any, error) {
			query, _ := payload.(string)

			if err := sleep(ac.Context(), cfg.Latency); err != nil {
				return nil, err
			}

			matches := make([]string, 0, len(dictionary))
			for _, word := range dictionary {
				if strings.HasPrefix(word, query) {
					matches = append(matches, word)
				}
			}

			return matches, ac.Commit("setSuggestions", suggestions{Query: query, Matches: matches})
		}),
		"loadProfile": func(ac *actions.Context[State], payload any) (any, error) {
			if err := sleep(ac.Context(), cfg.Latency); err != nil {
				return nil, err
			}

			return nil, ac.Commit("setProfile", payload)
		},
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
