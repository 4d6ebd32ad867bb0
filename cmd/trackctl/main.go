// Command trackctl is the command line front end for the trackademic server.
// It keeps a local session file with the signed-in account snapshot and
// refreshes it after every mutation.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/brendan-liang/softdev-sat/internal/client"
	"github.com/brendan-liang/softdev-sat/internal/models"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "trackctl",
		Usage: "Manage your trackademic account, events, and class groups.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8000",
				Usage:   "Base URL of the trackademic server.",
				EnvVars: []string{"TRACKADEMIC_SERVER"},
			},
			&cli.StringFlag{
				Name:    "session",
				Value:   defaultSessionPath(),
				Usage:   "Path of the local session file.",
				EnvVars: []string{"TRACKADEMIC_SESSION"},
			},
		},
		Commands: []*cli.Command{
			signUpCommand(),
			signInCommand(),
			signOutCommand(),
			statusCommand(),
			pullCommand(),
			eventsCommand(),
			groupsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".trackademic", "session.json")
}

func newClient(c *cli.Context) (*client.Client, error) {
	return client.New(c.String("server"), c.String("session"))
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}

func signUpCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Register a new account and sign in.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "name", Required: true, Usage: "Display name."},
			&cli.StringFlag{Name: "school", Required: true},
		},
		Action: func(c *cli.Context) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			if err := cl.SignUp(c.Context, c.String("username"), c.String("name"), password, c.String("school")); err != nil {
				return err
			}
			fmt.Println("Signed up as", c.String("username"))
			return nil
		},
	}
}

func signInCommand() *cli.Command {
	return &cli.Command{
		Name:  "signin",
		Usage: "Sign in and store the session locally.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
		},
		Action: func(c *cli.Context) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			if err := cl.SignIn(c.Context, c.String("username"), password); err != nil {
				return err
			}
			fmt.Println("Signed in as", c.String("username"))
			return nil
		},
	}
}

func signOutCommand() *cli.Command {
	return &cli.Command{
		Name:  "signout",
		Usage: "Discard the local session.",
		Action: func(c *cli.Context) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			return cl.SignOut()
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check whether the stored session is still valid.",
		Action: func(c *cli.Context) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			ok, err := cl.CheckSignIn(c.Context)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("not signed in")
				return nil
			}
			fmt.Printf("signed in as %s\n", cl.Username())
			return nil
		},
	}
}

func pullCommand() *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Refresh the local snapshot from the server and print it.",
		Action: func(c *cli.Context) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			if err := cl.Pull(c.Context); err != nil {
				return err
			}
			user := cl.CurrentUser()
			fmt.Printf("%s (%s) at %s: %d events, %d groups\n",
				user.Username, user.DisplayName, user.School, len(user.Events), len(user.Groups))
			return nil
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Manage your calendar events.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your events.",
				Action: func(c *cli.Context) error {
					cl, err := newClient(c)
					if err != nil {
						return err
					}
					if err := cl.Pull(c.Context); err != nil {
						return err
					}
					printEvents(cl.CurrentUser().Events)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a new event.",
				Flags: eventFlags(),
				Action: func(c *cli.Context) error {
					cl, err := newClient(c)
					if err != nil {
						return err
					}
					id, err := cl.CreateEvent(c.Context, eventFromFlags(c))
					if err != nil {
						return err
					}
					fmt.Println("Created event", id)
					return nil
				},
			},
			{
				Name:  "edit",
				Usage: "Rewrite an existing event's fields.",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
				}, eventFlags()...),
				Action: func(c *cli.Context) error {
					cl, err := newClient(c)
					if err != nil {
						return err
					}
					event := eventFromFlags(c)
					event.ID = c.String("id")
					if err := cl.EditEvent(c.Context, event); err != nil {
						return err
					}
					fmt.Println("Updated event", event.ID)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete one of your events.",
				ArgsUsage: "EVENT_ID",
				Action: func(c *cli.Context) error {
					cl, err := newClient(c)
					if err != nil {
						return err
					}
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one event id")
					}
					if err := cl.DeleteEvent(c.Context, c.Args().First()); err != nil {
						return err
					}
					fmt.Println("Deleted event", c.Args().First())
					return nil
				},
			},
		},
	}
}

func eventFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Required: true},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "type", Value: "SAC", Usage: "One of SAC, Homework, Exam, Other."},
		&cli.StringFlag{Name: "date", Usage: "ISO date, defaults to today."},
		&cli.IntFlag{Name: "start", Usage: "Start time slot."},
		&cli.IntFlag{Name: "end", Usage: "End time slot."},
		&cli.StringFlag{Name: "group", Usage: "Group id to share the event into."},
		&cli.StringFlag{Name: "colour"},
		&cli.BoolFlag{Name: "visible", Value: true, Usage: "Mirror the event into its group."},
	}
}

func eventFromFlags(c *cli.Context) models.Event {
	return models.Event{
		Title:       c.String("title"),
		Description: c.String("description"),
		Type:        models.EventType(c.String("type")),
		Date:        c.String("date"),
		StartTime:   c.Int("start"),
		EndTime:     c.Int("end"),
		GroupID:     c.String("group"),
		Colour:      c.String("colour"),
		Visible:     c.Bool("visible"),
	}
}

func printEvents(events map[string]models.Event) {
	ids := make([]string, 0, len(events))
	for id := range events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return events[ids[i]].NumericalID < events[ids[j]].NumericalID
	})
	for _, id := range ids {
		event := events[id]
		shared := ""
		if event.GroupID != "" {
			shared = " [group " + event.GroupID + "]"
		}
		fmt.Printf("%3d  %-10s %s  %s%s\n", event.NumericalID, event.Type, event.Date, event.Title, shared)
	}
}

func groupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "groups",
		Usage: "Manage class groups.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every group on the server.",
				Action: func(c *cli.Context) error {
					cl, err := newClient(c)
					if err != nil {
						return err
					}
					groups, err := cl.Groups(c.Context)
					if err != nil {
						return err
					}
					printGroups(groups)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a group at your school.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "colour"},
				},
				Action: func(c *cli.Context) error {
					cl, err := newClient(c)
					if err != nil {
						return err
					}
					if err := cl.Pull(c.Context); err != nil {
						return err
					}
					id, err := cl.CreateGroup(c.Context, c.String("name"), c.String("description"), c.String("colour"))
					if err != nil {
						return err
					}
					fmt.Println("Created group", id)
					return nil
				},
			},
			{
				Name:      "join",
				Usage:     "Join a group.",
				ArgsUsage: "GROUP_ID",
				Action:    groupAction(func(c *cli.Context, cl *client.Client, id string) error { return cl.JoinGroup(c.Context, id) }),
			},
			{
				Name:      "leave",
				Usage:     "Leave a group.",
				ArgsUsage: "GROUP_ID",
				Action:    groupAction(func(c *cli.Context, cl *client.Client, id string) error { return cl.LeaveGroup(c.Context, id) }),
			},
			{
				Name:      "delete",
				Usage:     "Delete a group and its shared events.",
				ArgsUsage: "GROUP_ID",
				Action:    groupAction(func(c *cli.Context, cl *client.Client, id string) error { return cl.DeleteGroup(c.Context, id) }),
			},
			{
				Name:      "delete-event",
				Usage:     "Remove a shared event from a group and all members.",
				ArgsUsage: "GROUP_ID EVENT_ID",
				Action: func(c *cli.Context) error {
					cl, err := newClient(c)
					if err != nil {
						return err
					}
					if c.NArg() != 2 {
						return fmt.Errorf("expected a group id and an event id")
					}
					return cl.DeleteGroupEvent(c.Context, c.Args().Get(0), c.Args().Get(1))
				},
			},
		},
	}
}

func groupAction(run func(*cli.Context, *client.Client, string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cl, err := newClient(c)
		if err != nil {
			return err
		}
		if c.NArg() != 1 {
			return fmt.Errorf("expected exactly one group id")
		}
		return run(c, cl, c.Args().First())
	}
}

func printGroups(groups map[string]models.Group) {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		group := groups[id]
		fmt.Printf("%s  %s (%s)  %d members, %d shared events\n",
			id, group.Name, group.School, len(group.Members), len(group.Events))
	}
}
