package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dfryer1193/tusitala/blog/application"
	"github.com/dfryer1193/tusitala/blog/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type publishOptions struct {
	title           string
	status          string
	schedule        string
	tags            []string
	categories      []int
	excerpt         string
	slug            string
	metaDescription string
	focusKeyphrase  string
	featuredMedia   int
	featuredFile    string
	featuredAsset   string
	featuredAlt     string
	user            string
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	opts := &publishOptions{}

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Publish a Markdown or HTML file",
		Long: "Publish a Markdown or HTML file to WordPress. Images under /uploads/temp/ are\n" +
			"uploaded to the media library and their references rewritten first.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read draft: %w", err)
			}

			draft, err := opts.draft(content)
			if err != nil {
				return err
			}

			wp, err := ctx.wordpressClient()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close database")
				}
			}()

			publisher := application.NewPublishService(wp, st.assets, st.storage,
				application.WithPublicationRepository(st.publications),
				application.WithMigrationConcurrency(cfg.Publish.MigrationConcurrency),
			)

			result, err := publisher.Publish(cmd.Context(), draft)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderPublishResult(result))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.title, "title", "t", "", "Post title (defaults to the leading # heading)")
	flags.StringVarP(&opts.status, "status", "s", "draft", "draft, publish, scheduled, pending or private")
	flags.StringVar(&opts.schedule, "at", "", "Publish time in RFC 3339, e.g. 2025-07-01T09:00:00Z")
	flags.StringSliceVar(&opts.tags, "tag", nil, "Tag name or id (repeatable)")
	flags.IntSliceVar(&opts.categories, "category", nil, "Category id (repeatable)")
	flags.StringVar(&opts.excerpt, "excerpt", "", "Post excerpt")
	flags.StringVar(&opts.slug, "slug", "", "Post slug")
	flags.StringVar(&opts.metaDescription, "meta-description", "", "SEO meta description")
	flags.StringVar(&opts.focusKeyphrase, "focus-keyphrase", "", "SEO focus keyphrase")
	flags.IntVar(&opts.featuredMedia, "featured-media", 0, "Existing media library id for the featured image")
	flags.StringVar(&opts.featuredFile, "featured-file", "", "Local image file to upload as the featured image")
	flags.StringVar(&opts.featuredAsset, "featured-asset", "", "Stored asset path to use as the featured image")
	flags.StringVar(&opts.featuredAlt, "featured-alt", "", "Alt text for the featured image")
	flags.StringVarP(&opts.user, "user", "u", "", "Owner of the uploaded images")

	return cmd
}

func (o *publishOptions) draft(content []byte) (domain.Draft, error) {
	title := strings.TrimSpace(o.title)
	if title == "" {
		title, content = splitTitleHeading(content)
	}
	if title == "" {
		return domain.Draft{}, fmt.Errorf("no title: pass --title or start the file with a # heading")
	}

	draft := domain.Draft{
		Title:           title,
		Content:         string(content),
		Status:          domain.PostStatus(strings.ToLower(strings.TrimSpace(o.status))),
		CategoryIDs:     o.categories,
		Tags:            o.tags,
		Excerpt:         o.excerpt,
		Slug:            o.slug,
		MetaDescription: o.metaDescription,
		FocusKeyphrase:  o.focusKeyphrase,
		OwnerID:         o.user,
	}

	if o.schedule != "" {
		at, err := time.Parse(time.RFC3339, o.schedule)
		if err != nil {
			return domain.Draft{}, fmt.Errorf("--at: %w", err)
		}
		draft.ScheduledAt = &at
	}

	featured, err := o.featuredImage()
	if err != nil {
		return domain.Draft{}, err
	}
	draft.FeaturedImage = featured

	return draft, nil
}

func (o *publishOptions) featuredImage() (*domain.FeaturedImage, error) {
	switch {
	case o.featuredMedia > 0:
		return &domain.FeaturedImage{MediaID: o.featuredMedia, AltText: o.featuredAlt}, nil
	case o.featuredAsset != "":
		return &domain.FeaturedImage{AssetPath: o.featuredAsset, AltText: o.featuredAlt}, nil
	case o.featuredFile != "":
		data, err := os.ReadFile(o.featuredFile)
		if err != nil {
			return nil, fmt.Errorf("read featured image: %w", err)
		}
		return &domain.FeaturedImage{
			Content:  data,
			Filename: filepath.Base(o.featuredFile),
			AltText:  o.featuredAlt,
		}, nil
	default:
		return nil, nil
	}
}

// splitTitleHeading takes the leading "# " heading off a Markdown document.
func splitTitleHeading(content []byte) (string, []byte) {
	title := application.ExtractPostTitle(content)
	if title == "" {
		return "", content
	}

	_, rest, found := bytes.Cut(content, []byte("\n"))
	if !found {
		rest = nil
	}
	return title, bytes.TrimLeft(rest, "\r\n")
}

func renderPublishResult(result *domain.PublishResult) string {
	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"ID", "Title", "Status", "URL"},
		[][]string{{strconv.Itoa(result.RemoteID), result.Title, string(result.Status), result.URL}},
		[]columnAlignment{alignRight},
	))

	if len(result.Images) > 0 {
		rows := make([][]string, 0, len(result.Images))
		for _, img := range result.Images {
			rows = append(rows, []string{img.OriginalSrc, img.RemoteSrc, strconv.Itoa(img.RemoteMediaID)})
		}
		b.WriteString("\n")
		b.WriteString(renderTable([]string{"Local", "Remote", "Media ID"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}
	return b.String()
}
