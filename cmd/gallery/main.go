package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"gallery-go/internal/app"
	"gallery-go/internal/config"
	"gallery-go/internal/encryption"
	"gallery-go/internal/gallery"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a GalleryApp. The caller must defer
// app.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.GalleryApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewGalleryApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Photo gallery sync client",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init SERVER_URL",
	Short: "Initialize configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(strings.TrimRight(args[0], "/"), defaults["base_dir"])
		if encrypt {
			cfg.Encryption.Type = "age"
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if encrypt {
			codec, err := encryption.NewCodecFromConfig(cfg.Encryption)
			if err != nil {
				return fmt.Errorf("creating cache codec: %w", err)
			}
			if err := codec.Setup(); err != nil {
				return fmt.Errorf("generating cache keys: %w", err)
			}
			fmt.Printf("Cache keys generated in %s\n", filepath.Dir(cfg.Encryption.IdentityPath))
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Server:   %s\n", cfg.ServerURL)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Server:    %s\n", cfg.ServerURL)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Cache:     %s\n", cfg.Cache.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

// login command
var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Authenticate against the gallery server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Login")
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		if err := a.Tokens().Login(a.ServerURL(), a.HTTP(), args[0], string(password)); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Logged in as %s\n", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Logout")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Tokens().Logout()
	},
}

// fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch PATH",
	Short: "Load an album and print its contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		a, err := newApp("Fetch")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Load.Fetch(path, true); err != nil {
			return err
		}
		a.Wait()

		entry := a.State().AlbumEntry(path)
		switch entry.Status {
		case gallery.Loaded:
			printAlbum(entry.Album)
		case gallery.DoesNotExist:
			fmt.Printf("Album %s does not exist\n", path)
		default:
			return fmt.Errorf("album %s: %s (%s)", path, entry.Status, entry.ErrorMessage)
		}
		return nil
	},
}

func printAlbum(album *gallery.Album) {
	fmt.Printf("%s  %s\n", album.Path(), album.Title())
	if s := album.Summary(); s != "" {
		fmt.Printf("  %s\n", s)
	}
	for _, sub := range album.Albums() {
		fmt.Printf("  %-30s  [album] %s\n", sub.Path(), sub.Title())
	}
	for _, m := range album.Media() {
		d := m.DetailDimensions()
		fmt.Printf("  %-30s  [%s] %s (%dx%d)\n", m.Path(), m.Kind(), m.Title(), d.Width, d.Height)
	}
}

// exists command
var existsCmd = &cobra.Command{
	Use:   "exists PATH",
	Short: "Check whether an album exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Exists")
		if err != nil {
			return err
		}
		defer a.Close()

		ok, err := a.Load.AlbumExists(args[0])
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("%s exists\n", args[0])
		} else {
			fmt.Printf("%s does not exist\n", args[0])
		}
		return nil
	},
}

// create command
var createCmd = &cobra.Command{
	Use:   "create PATH",
	Short: "Create an album",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Create")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Create.Create(args[0]); err != nil {
			return err
		}
		a.Wait()
		return exitOnError(a, args[0])
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete PATH",
	Short: "Delete an album or media item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Delete.Delete(args[0]); err != nil {
			return err
		}
		a.Wait()
		return exitOnError(a, args[0])
	},
}

// rename command
var renameCmd = &cobra.Command{
	Use:   "rename PATH NEW_NAME",
	Short: "Rename a day album or media item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Rename")
		if err != nil {
			return err
		}
		defer a.Close()

		// Renames need the target (for media, its parent album) loaded first.
		target := args[0]
		if p, err := gallery.ParsePath(target); err == nil && p.IsMedia() {
			target = p.Parent().String()
		}
		if err := preload(a, target); err != nil {
			return err
		}

		if err := a.Rename.Rename(args[0], args[1]); err != nil {
			return err
		}
		a.Wait()
		return exitOnError(a, args[0])
	},
}

// thumbnail command
var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail ALBUM_PATH MEDIA_PATH",
	Short: "Set an album's thumbnail",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Thumbnail")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Thumbnail.SetAlbumThumbnail(args[0], args[1]); err != nil {
			return err
		}
		a.Wait()
		return nil
	},
}

// crop command
var cropCmd = &cobra.Command{
	Use:   "crop MEDIA_PATH X Y WIDTH HEIGHT",
	Short: "Set a media item's thumbnail crop",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		var nums [4]int64
		for i, s := range args[1:] {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", s)
			}
			nums[i] = n
		}

		a, err := newApp("Crop")
		if err != nil {
			return err
		}
		defer a.Close()

		crop := gallery.Rect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
		if err := a.Crop.SetCrop(args[0], crop); err != nil {
			return err
		}
		a.Wait()
		return nil
	},
}

// upload command
var uploadCmd = &cobra.Command{
	Use:   "upload ALBUM_PATH FILE...",
	Short: "Upload media files into a day album",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		albumPath := args[0]

		a, err := newApp("Upload")
		if err != nil {
			return err
		}
		defer a.Close()

		// Load the album first so replacement uploads know the tokens they
		// are replacing.
		if err := preload(a, albumPath); err != nil {
			return err
		}

		var files []gallery.UploadFile
		for _, fp := range args[1:] {
			content, err := os.ReadFile(fp)
			if err != nil {
				return fmt.Errorf("reading %s: %w", fp, err)
			}
			name := filepath.Base(fp)
			files = append(files, gallery.UploadFile{
				Name:    name,
				Path:    albumPath + name,
				Content: content,
			})
		}

		if err := a.Upload.Upload(albumPath, files); err != nil {
			return err
		}
		a.Wait()
		return nil
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search TERMS",
	Short: "Search albums and media",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp("Search")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Search.Search(strings.Join(args, " "))
		if err != nil {
			return err
		}
		for all && !res.Exhausted() {
			if _, err := a.Search.LoadMore(res); err != nil {
				return err
			}
		}

		fmt.Printf("%d of %d results:\n", len(res.Items), res.Total)
		for _, item := range res.Items {
			fmt.Printf("  %-30s  %s\n", item.Path(), item.Title())
		}
		return nil
	},
}

// cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local album cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all cached albums",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CachePurge")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.PurgeCache(); err != nil {
			return err
		}
		fmt.Println("Cache purged.")
		return nil
	},
}

// preload fetches path and waits for it to settle.
func preload(a *app.GalleryApp, path string) error {
	if err := a.Load.Fetch(path, true); err != nil {
		return err
	}
	a.Wait()

	entry := a.State().AlbumEntry(path)
	if entry.Status != gallery.Loaded {
		return fmt.Errorf("album %s: %s (%s)", path, entry.Status, entry.ErrorMessage)
	}
	return nil
}

// exitOnError surfaces an errored terminal status as a non-zero exit.
func exitOnError(a *app.GalleryApp, path string) error {
	entry := a.State().AlbumEntry(path)
	if entry.Status.IsErrored() {
		return fmt.Errorf("%s: %s", entry.Status, entry.ErrorMessage)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	cacheCmd.AddCommand(cachePurgeCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(thumbnailCmd)
	rootCmd.AddCommand(cropCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(cacheCmd)
	searchCmd.Flags().Bool("all", false, "Fetch every result page")
	configInitCmd.Flags().Bool("encrypt", false, "Encrypt the album cache with a generated age key pair")
}
