package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Usage:   "Base URL of the lessons API",
			Value:   "http://localhost:8080",
			Sources: cli.EnvVars("DOMBYRA_API_URL"),
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Access token sent as a bearer token",
			Sources: cli.EnvVars("DOMBYRA_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "cache",
			Usage:   "Path to the local progress cache, empty disables it",
			Value:   "dombyra-progress.db",
			Sources: cli.EnvVars("DOMBYRA_CACHE"),
		},
		&cli.IntFlag{
			Name:    "user-id",
			Usage:   "User the local cache entries belong to",
			Sources: cli.EnvVars("DOMBYRA_USER_ID"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log debug output",
		},
	}
}

// watchCommand simulates playback of a lesson
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Play a lesson and follow auto-advance to the next one",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "lesson",
				Aliases:  []string{"l"},
				Usage:    "Lesson ID to start with",
				Required: true,
			},
			&cli.FloatFlag{
				Name:  "duration",
				Usage: "Video duration in seconds, defaults to the lesson duration",
			},
			&cli.FloatFlag{
				Name:  "speed",
				Usage: "Playback speed multiplier",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "start",
				Usage: "Start position in percent, defaults to the stored progress",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "no-advance",
				Usage: "Stop after the first lesson instead of counting down to the next",
			},
			&cli.DurationFlag{
				Name:  "countdown-tick",
				Usage: "Auto-advance countdown step",
				Value: time.Second,
			},
		},
		Action: r.Watch,
	}
}

// progressCommand prints stored progress
func progressCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "progress",
		Usage: "Show the stored progress of a lesson",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "lesson",
				Aliases:  []string{"l"},
				Usage:    "Lesson ID",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Progress,
	}
}

// lessonsCommand lists lessons with their lock state
func lessonsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lessons",
		Usage: "List lessons with progress and lock state",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Lessons,
	}
}

// tokenCommand issues development access tokens
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Sign a development access token with the shared JWT secret",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "secret",
				Usage:    "JWT secret shared with the API",
				Sources:  cli.EnvVars("DOMBYRA_JWT_SECRET", "JWT_SECRET"),
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime",
				Value: 24 * time.Hour,
			},
		},
		Action: r.Token,
	}
}
