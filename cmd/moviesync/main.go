package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/player"
	"github.com/JOHNSONPCX/movie-sync/internal/session"
	"github.com/JOHNSONPCX/movie-sync/internal/transport"
)

func main() {
	app := &cli.App{
		Name:  "moviesync",
		Usage: "synchronized media playback across machines on a LAN",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "trace, debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			logger.Init(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "host",
				Usage: "serve a session and control playback",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Required: true, Usage: "media folder"},
					&cli.StringFlag{Name: "addr", Value: fmt.Sprintf(":%d", transport.DefaultPort), Usage: "listen address"},
				},
				Action: func(c *cli.Context) error {
					return run(session.Config{
						Role:        session.RoleHost,
						Folder:      c.String("folder"),
						Addr:        c.String("addr"),
						Player:      player.NewStub(),
						WatchFolder: true,
					})
				},
			},
			{
				Name:  "join",
				Usage: "connect to a host and mirror its playback",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Required: true, Usage: "media folder"},
					&cli.StringFlag{Name: "host", Required: true, Usage: "host address"},
				},
				Action: func(c *cli.Context) error {
					addr := c.String("host")
					if !strings.Contains(addr, ":") {
						addr = fmt.Sprintf("%s:%d", addr, transport.DefaultPort)
					}
					return run(session.Config{
						Role:   session.RoleClient,
						Folder: c.String("folder"),
						Addr:   addr,
						Player: player.NewStub(),
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("startup failed")
	}
}

func run(cfg session.Config) error {
	sess, err := session.New(cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	if cfg.Role == session.RoleHost {
		fmt.Printf("Hosting on %s\n", sess.Addr())
	}
	printPlaylist(sess)
	fmt.Println(`Commands: play <n>, next, prev, pause, resume, seek <seconds>, shuffle, sync, list, missing, quit`)

	commandLoop(sess)
	return nil
}

func commandLoop(sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(strings.ToLower(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return
		case "play":
			if len(fields) < 2 {
				fmt.Println("usage: play <number>")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("invalid file number")
				continue
			}
			// Playlist numbers are 1-based on screen.
			if err := sess.PlayFile(n - 1); err != nil {
				fmt.Println("cannot play:", err)
			}
		case "next":
			if err := sess.Next(); err != nil {
				fmt.Println("cannot advance:", err)
			}
		case "prev":
			if err := sess.Previous(); err != nil {
				fmt.Println("cannot go back:", err)
			}
		case "pause":
			sess.Pause()
		case "resume":
			if err := sess.PlayCurrent(); err != nil {
				fmt.Println("cannot resume:", err)
			}
		case "seek":
			if len(fields) < 2 {
				fmt.Println("usage: seek <seconds>")
				continue
			}
			secs, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				fmt.Println("invalid seek time")
				continue
			}
			sess.SeekMs(int64(secs * 1000))
		case "shuffle":
			sess.ToggleShuffle()
		case "sync":
			sess.ForceSync()
		case "list":
			printPlaylist(sess)
		case "missing":
			printMissing(sess)
		default:
			fmt.Println("unknown command")
		}
	}
}

func printPlaylist(sess *session.Session) {
	entries := sess.Entries()
	if len(entries) == 0 {
		fmt.Println("Playlist is empty.")
		return
	}
	fmt.Println("Playlist:")
	for _, e := range entries {
		marker := ""
		if e.LocalPath == "" {
			marker = "  (missing locally)"
		}
		fmt.Printf("%3d. %s%s\n", e.Index+1, e.Name, marker)
	}
}

func printMissing(sess *session.Session) {
	missing := sess.Missing()
	if len(missing) == 0 {
		fmt.Println("No missing files.")
		return
	}
	fmt.Println("Missing files:")
	for index, e := range missing {
		fmt.Printf("%3d. %s\n", index+1, e.Name)
	}
}
