package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"
	"guideline-agent-be/internal/repository/memory"
	"guideline-agent-be/internal/seed"
	"guideline-agent-be/pkg/matching"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type options struct {
	message   string
	context   []string
	turns     int
	top       int
	threshold float64
	all       bool
}

var (
	headerColor   = color.New(color.FgCyan, color.Bold)
	categoryColor = color.New(color.FgYellow)
	selectedColor = color.New(color.FgGreen)
	matchedColor  = color.New(color.FgWhite)
	missedColor   = color.New(color.Faint)
)

func run(ctx context.Context, out io.Writer, opts options) error {
	if opts.turns < 1 {
		return fmt.Errorf("turns must be at least 1")
	}

	guidelines := seed.Guidelines()
	for _, g := range guidelines {
		g.Id = uuid.New()
	}

	cfg := matching.DefaultConfig()
	cfg.MaxGuidelinesPerResponse = opts.top
	cfg.MatchThreshold = opts.threshold
	cfg = cfg.Normalize()

	conversation := newMemoryConversation(opts.context)
	strategy := matching.NewLexicalStrategy(cfg, nil)
	orchestrator := matching.NewOrchestrator(
		cfg,
		memory.NewSessionGuidelineCache(time.Minute),
		staticCatalog(guidelines),
		conversation,
		conversation,
		strategy,
		logger.NewNopLogger(),
	)

	conversationId := uuid.New()
	for turn := 1; turn <= opts.turns; turn++ {
		result, err := orchestrator.Rank(ctx, matching.TurnRequest{
			SessionId:      "cli",
			Message:        opts.message,
			ConversationId: conversationId,
		})
		if err != nil {
			return err
		}
		// usage is written asynchronously; the next turn must see it
		orchestrator.Wait(time.Second)

		printTurn(out, turn, opts.message, result)
		if opts.all {
			printAll(out, strategy.RankWithContext(ctx, matching.RankInput{
				Message:        opts.message,
				Guidelines:     guidelines,
				RecentMessages: result.RecentMessages,
			}))
		}
		conversation.append(opts.message)
	}
	return nil
}

func printTurn(out io.Writer, turn int, message string, result *matching.TurnResult) {
	headerColor.Fprintf(out, "\nTurn %d: %q\n", turn, message)

	category := result.DetectedCategory
	if category == "" {
		category = "none"
	}
	categoryColor.Fprintf(out, "Detected category: %s (%d candidates, %s)\n", category, result.CandidateCount, result.Method)

	if len(result.Guidelines) == 0 {
		missedColor.Fprintln(out, "No guideline matched")
		return
	}
	for i, rg := range result.Guidelines {
		selectedColor.Fprintf(out, "%d. [%5.1f] %s\n", i+1, rg.Score, rg.Guideline.Condition)
		fmt.Fprintf(out, "   original %.1f, used %d times: %s\n", rg.OriginalScore, rg.UsageCount, rg.Guideline.Action)
	}
}

func printAll(out io.Writer, scores []matching.HybridMatchScore) {
	fmt.Fprintln(out, "All scores:")
	for _, s := range scores {
		line := fmt.Sprintf("  [%5.1f] %-50s %s\n", s.Score, s.Guideline.Condition, displayCategory(s.Guideline))
		if s.Matched {
			matchedColor.Fprint(out, line)
		} else {
			missedColor.Fprint(out, line)
		}
	}
}

func displayCategory(g *entity.Guideline) string {
	if !g.HasCategory() {
		return "-"
	}
	return g.Category
}

type staticCatalog []*entity.Guideline

func (c staticCatalog) FetchActiveGuidelines(context.Context) ([]*entity.Guideline, error) {
	return c, nil
}

// memoryConversation plays both the conversation source and the usage recorder.
type memoryConversation struct {
	mu       sync.Mutex
	messages []entity.ContextMessage
	usage    map[uuid.UUID]int
}

func newMemoryConversation(history []string) *memoryConversation {
	c := &memoryConversation{usage: make(map[uuid.UUID]int)}
	for _, m := range history {
		c.append(m)
	}
	return c
}

func (c *memoryConversation) append(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, entity.ContextMessage{
		Role:      entity.MessageRoleUser,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func (c *memoryConversation) FetchRecentMessages(_ context.Context, _ uuid.UUID, limit int) ([]entity.ContextMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := 0
	if limit > 0 && len(c.messages) > limit {
		start = len(c.messages) - limit
	}
	return append([]entity.ContextMessage(nil), c.messages[start:]...), nil
}

func (c *memoryConversation) FetchGuidelineUsageCounts(context.Context, uuid.UUID) (map[uuid.UUID]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[uuid.UUID]int, len(c.usage))
	for id, n := range c.usage {
		counts[id] = n
	}
	return counts, nil
}

func (c *memoryConversation) RecordUsage(_ context.Context, _, guidelineId uuid.UUID, _ float64, _ bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage[guidelineId]++
	return nil
}
