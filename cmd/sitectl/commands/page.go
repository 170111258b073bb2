package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/sitebrand/internal/pagetype"
	"github.com/sitebrand/internal/service"
	"github.com/spf13/cobra"
)

func pageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Create and publish pages",
	}
	cmd.AddCommand(pageCreateCmd(a), pagePublishCmd(a), pageEntriesCmd(a))
	return cmd
}

func pageCreateCmd(a *app) *cobra.Command {
	var (
		kind   string
		parent uint
		title  string
		slug   string
		body   string
		intro  string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := pagetype.ParseKind(kind)
			if err != nil {
				return err
			}

			page, err := a.pages.Create(cmd.Context(), service.PageInput{
				Kind:     parsed,
				ParentID: optionalID(parent),
				Title:    title,
				Slug:     slug,
				Body:     body,
				Intro:    intro,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s page %d (%s)\n", page.Kind.Label(), page.ID, page.Slug)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "page type: home, section, blog_index or blog")
	cmd.Flags().UintVar(&parent, "parent", 0, "parent page id (omit for a home page)")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug (default derived from the title)")
	cmd.Flags().StringVar(&body, "body", "", "markdown body for section and blog pages")
	cmd.Flags().StringVar(&intro, "intro", "", "markdown intro for blog index pages")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func pagePublishCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "publish [page-id]",
		Short: "Make a page live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "page id")
			if err != nil {
				return err
			}

			var when *time.Time
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				when = &parsed
			}

			page, err := a.pages.Publish(cmd.Context(), id, when)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published page %d, first published %s\n", page.ID, page.FirstPublishedAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "publish time in RFC 3339 (default now)")
	return cmd
}

func pageEntriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entries [blog-index-id]",
		Short: "List live blog entries, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "page id")
			if err != nil {
				return err
			}
			entries, err := a.pages.BlogEntries(cmd.Context(), id)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPUBLISHED\tTITLE")
			for _, entry := range entries {
				published := "-"
				if entry.FirstPublishedAt != nil {
					published = entry.FirstPublishedAt.UTC().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", entry.ID, published, entry.Title)
			}
			return w.Flush()
		},
	}
}
