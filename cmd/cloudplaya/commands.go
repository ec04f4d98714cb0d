package main

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/Sternrassler/cloudplaya/pkg/client"
	"github.com/Sternrassler/cloudplaya/pkg/criteria"
	"github.com/Sternrassler/cloudplaya/pkg/library"
	"github.com/Sternrassler/cloudplaya/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *options) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return fmt.Errorf("password required: use --password or %s", passwordEnv)
			}

			c, closeFn, err := openClient(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := c.Authenticate(cmd.Context(), username, password); err != nil {
				return err
			}

			creds, _ := c.Credentials()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as customer %s (token %s)\n",
				creds.CustomerID, logging.Redact(creds.ADPToken))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (default $"+passwordEnv+")")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := openClient(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			return c.Logout(cmd.Context())
		},
	}
}

// listFlags are the filters shared by the listing commands.
type listFlags struct {
	artist string
	album  string
	sort   string
	desc   bool
	limit  int
}

func (f *listFlags) register(cmd *cobra.Command, withAlbum bool) {
	cmd.Flags().StringVar(&f.artist, "artist", "", "Only records by this artist")
	if withAlbum {
		cmd.Flags().StringVar(&f.album, "album", "", "Only records from this album")
	}
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort column (default: by name)")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Stop after this many records (0 = all)")
}

func (f *listFlags) options() client.SearchOptions {
	var opts client.SearchOptions
	if f.artist != "" {
		opts.Search = append(opts.Search, criteria.Where("artistName", criteria.Equals, f.artist))
	}
	if f.album != "" {
		opts.Search = append(opts.Search, criteria.Where("albumName", criteria.Equals, f.album))
	}
	if f.sort != "" {
		dir := criteria.Asc
		if f.desc {
			dir = criteria.Desc
		}
		opts.Sort = []criteria.Sort{{Column: f.sort, Direction: dir}}
	}
	return opts
}

// printAll writes one line per record until seq ends, fails, or limit lines
// are written. Stopping early stops page fetching.
func printAll[T any](w io.Writer, seq iter.Seq2[T, error], limit int, line func(T) string) error {
	n := 0
	for record, err := range seq {
		if err != nil {
			return err
		}
		fmt.Fprintln(w, line(record))
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	log.Debug().Int("records", n).Msg("Listing complete")
	return nil
}

func songLine(s library.Song) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s", s.ObjectID, s.Title, s.ArtistName, s.AlbumName)
}

func albumLine(a library.Album) string {
	return fmt.Sprintf("%s\t%s\t%s\t%d", a.ObjectID, a.AlbumName, a.ArtistName, a.NumTracks)
}

func artistLine(a library.Artist) string {
	return fmt.Sprintf("%s\t%s", a.ObjectID, a.ArtistName)
}

func newSongsCmd(opts *options) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "songs",
		Short: "List songs",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := openAuthedClient(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			return printAll(cmd.OutOrStdout(), c.Songs(cmd.Context(), flags.options()), flags.limit, songLine)
		},
	}
	flags.register(cmd, true)

	return cmd
}

func newAlbumsCmd(opts *options) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "albums",
		Short: "List albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := openAuthedClient(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			return printAll(cmd.OutOrStdout(), c.Albums(cmd.Context(), flags.options()), flags.limit, albumLine)
		},
	}
	flags.register(cmd, false)

	return cmd
}

func newArtistsCmd(opts *options) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "artists",
		Short: "List artists",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := openAuthedClient(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			return printAll(cmd.OutOrStdout(), c.Artists(cmd.Context(), flags.options()), flags.limit, artistLine)
		},
	}
	flags.register(cmd, false)

	return cmd
}

func newAlbumCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "album <artist> <album>",
		Short: "Look up one album",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := openAuthedClient(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			album, err := c.Album(cmd.Context(), args[0], args[1])
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("no album %q by %q", args[1], args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), albumLine(album))
			return nil
		},
	}
}

func newTracksCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks <artist> <album>",
		Short: "List the tracks of one album in disc and track order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := openAuthedClient(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			album, err := c.Album(cmd.Context(), args[0], args[1])
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("no album %q by %q", args[1], args[0])
			}
			if err != nil {
				return err
			}

			songs, err := c.TrackList(cmd.Context(), album)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, s := range songs {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", s.DiscNum, s.TrackNum, s.ObjectID, s.Title)
			}
			return nil
		},
	}
}

func newStreamURLsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stream-urls <track-id>...",
		Short: "Resolve playable URLs for track object ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, closeFn, err := openAuthedClient(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			urls, err := c.StreamURLs(cmd.Context(), args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i, u := range urls {
				if i < len(args) {
					fmt.Fprintf(w, "%s\t%s\n", args[i], u)
				}
			}
			return nil
		},
	}
}
