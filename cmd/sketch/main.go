// Command sketch is a terminal client for the sketchbook server. The canvas,
// session token and current drawing id are kept in a state directory between
// invocations.
//
//	sketch login -u ada -p secret
//	sketch draw strokes.jsonl
//	sketch save
//	sketch prev | next | new
//	sketch export out.jpg
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sketchbook/sketchbook/internal/canvas"
	"github.com/sketchbook/sketchbook/internal/client"
	"github.com/sketchbook/sketchbook/internal/drawing"
	"github.com/sketchbook/sketchbook/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const usage = `usage: sketch [flags] <command> [args]

commands:
  login            log in (-u/-p or SKETCH_USERNAME/SKETCH_PASSWORD)
  draw <file>      replay a JSON-lines pointer script onto the canvas
  save             upload the canvas as a new drawing
  prev | next      load the previous / next drawing onto the canvas
  latest           load the newest drawing
  new              start a blank drawing
  export <file>    write the canvas as JPEG
  status           print the current drawing id

flags:
`

func main() {
	flags := pflag.NewFlagSet("sketch", pflag.ExitOnError)
	flags.StringP("server", "s", "http://localhost:4000", "server base URL")
	flags.StringP("username", "u", "", "login name or email")
	flags.StringP("password", "p", "", "password")
	flags.String("state-dir", defaultStateDir(), "where the canvas and session are kept")
	flags.Int("width", 800, "canvas width for new drawings")
	flags.Int("height", 600, "canvas height for new drawings")
	flags.Float64("pixel-ratio", 1, "device pixel ratio applied to script coordinates")
	flags.Bool("raw", false, "use script coordinates as-is (no toolbar offset)")
	flags.String("log-level", "warn", "debug|info|warn|error")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix("SKETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	logger.Init(v.GetString("log-level"))

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, v, args); err != nil {
		fmt.Fprintln(os.Stderr, "sketch:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, v *viper.Viper, args []string) error {
	st, err := loadState(v.GetString("state-dir"), v.GetInt("width"), v.GetInt("height"))
	if err != nil {
		return err
	}
	defer st.Surface.Close()

	c, err := client.New(v.GetString("server"), st.Surface,
		client.WithToken(st.Token), client.WithCurrentID(st.CurrentID))
	if err != nil {
		return err
	}

	switch cmd := args[0]; cmd {
	case "login":
		if err := c.Login(ctx, v.GetString("username"), v.GetString("password")); err != nil {
			return err
		}
		fmt.Println("logged in")

	case "draw":
		if len(args) < 2 {
			return fmt.Errorf("draw needs a script file")
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		m := canvas.NewMapper(v.GetFloat64("pixel-ratio"))
		if v.GetBool("raw") {
			m.OffsetY = 0
		}
		var n int
		c.WithSurface(func(s *canvas.Surface) {
			n, err = canvas.Replay(canvas.NewRenderer(s, m), f)
		})
		if err != nil {
			return err
		}
		fmt.Printf("applied %d events\n", n)

	case "save":
		id, err := c.Save(ctx)
		if err != nil {
			return err
		}
		fmt.Println(id)

	case "prev", "next", "latest":
		dir := map[string]drawing.Direction{"prev": drawing.Before, "next": drawing.After, "latest": drawing.Latest}[cmd]
		d, err := c.LoadAdjacent(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", d.ID.Hex(), d.CreatedAt.Format("2006-01-02 15:04:05"))

	case "new":
		c.NewDrawing()

	case "export":
		if len(args) < 2 {
			return fmt.Errorf("export needs an output file")
		}
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		c.WithSurface(func(s *canvas.Surface) { err = s.Download(f) })
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

	case "status":
		id := c.CurrentID()
		if id == "" {
			id = "(new drawing)"
		}
		fmt.Println(id)
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	st.Token = c.Token()
	st.CurrentID = c.CurrentID()
	return st.save()
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "sketchbook")
	}
	return ".sketchbook"
}
