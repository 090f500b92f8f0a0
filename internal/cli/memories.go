package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

type rememberFlags struct {
	chatID     string
	privacy    string
	category   string
	tags       []string
	importance int
	memType    string
}

var remember rememberFlags

var rememberCmd = &cobra.Command{
	Use:   "remember <content>",
	Short: "Store a memory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemember,
}

type recallFlags struct {
	topK           int
	includePrivate bool
	privateTags    []string
	categories     []string
	types          []string
	minImportance  int
}

var recall recallFlags

var recallCmd = &cobra.Command{
	Use:   "recall <query>",
	Short: "Search memories by meaning",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRecall,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory statistics for the user",
	RunE:  runStats,
}

func init() {
	f := rememberCmd.Flags()
	f.StringVar(&remember.chatID, "chat", "", "Chat the memory came from")
	f.StringVarP(&remember.privacy, "privacy", "p", "", "Privacy level: public, contextual, private or vault")
	f.StringVar(&remember.category, "category", "", "Category")
	f.StringSliceVarP(&remember.tags, "tags", "t", nil, "Comma separated tags")
	f.IntVarP(&remember.importance, "importance", "i", memory.DefaultImportance, "Importance 0-10")
	f.StringVar(&remember.memType, "type", "", "Memory type: working, consolidated or wisdom")

	f = recallCmd.Flags()
	f.IntVarP(&recall.topK, "top-k", "k", 0, "Maximum results (default from config)")
	f.BoolVar(&recall.includePrivate, "include-private", false, "Include private memories")
	f.StringSliceVar(&recall.privateTags, "private-tags", nil, "Only include private memories with these tags")
	f.StringSliceVar(&recall.categories, "categories", nil, "Restrict to categories")
	f.StringSliceVar(&recall.types, "types", nil, "Restrict to memory types")
	f.IntVar(&recall.minImportance, "min-importance", 0, "Minimum importance")
}

func (f rememberFlags) options(cmd *cobra.Command) (memory.StoreOptions, error) {
	opts := memory.StoreOptions{
		ChatID:   f.chatID,
		Category: f.category,
		Tags:     splitList(f.tags),
	}
	if f.privacy != "" {
		p, err := memory.ParsePrivacyLevel(f.privacy)
		if err != nil {
			return opts, err
		}
		opts.PrivacyLevel = p
	}
	if f.memType != "" {
		t, err := memory.ParseMemoryType(f.memType)
		if err != nil {
			return opts, err
		}
		opts.MemoryType = t
	}
	if cmd.Flags().Changed("importance") {
		opts.Importance = memory.Importance(f.importance)
	}
	return opts, nil
}

func (f recallFlags) options(cmd *cobra.Command) (memory.SearchOptions, error) {
	opts := memory.SearchOptions{
		TopK:           f.topK,
		IncludePrivate: f.includePrivate,
		PrivateTags:    splitList(f.privateTags),
		Categories:     splitList(f.categories),
	}
	for _, s := range splitList(f.types) {
		t, err := memory.ParseMemoryType(s)
		if err != nil {
			return opts, err
		}
		opts.MemoryTypes = append(opts.MemoryTypes, t)
	}
	if cmd.Flags().Changed("min-importance") {
		opts.MinImportance = memory.Importance(f.minImportance)
	}
	return opts, nil
}

func runRemember(cmd *cobra.Command, args []string) error {
	user, err := getUserID()
	if err != nil {
		return err
	}
	opts, err := remember.options(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.svc.StoreMemory(cmd.Context(), user, strings.Join(args, " "), opts)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"id": id})
}

func runRecall(cmd *cobra.Command, args []string) error {
	user, err := getUserID()
	if err != nil {
		return err
	}
	opts, err := recall.options(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.svc.SearchMemories(cmd.Context(), user, strings.Join(args, " "), opts)
	if err != nil {
		return err
	}
	if !a.svc.IndexConfigured() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no vector index configured")
	}
	return printJSON(cmd, results)
}

func runStats(cmd *cobra.Command, args []string) error {
	user, err := getUserID()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.svc.GetMemoryStats(cmd.Context(), user)
	if err != nil {
		return err
	}
	return printJSON(cmd, stats)
}
