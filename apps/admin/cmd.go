package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/neolearn/neolearn/core"
	"github.com/neolearn/neolearn/core/topic"
	"github.com/neolearn/neolearn/core/user"
	"github.com/neolearn/neolearn/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	migrateFunc      = database.Migrate  // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sqlx.DB
	usrRepo   user.Repository
	topicRepo topic.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME - create a user; the password will be prompted")
	fmt.Println("  addtopic -title TITLE -prompt PROMPT - add a topic to the catalog")
	fmt.Println("  deltopic -title TITLE - remove a topic from the catalog")
	fmt.Println("  migrate - create tables and seed the default topics")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")

	addTopicCmd := flag.NewFlagSet("addtopic", flag.ExitOnError)
	addTopicTitle := addTopicCmd.String("title", "", "The topic title.")
	addTopicPrompt := addTopicCmd.String("prompt", "", "The tutor instructions for this topic.")

	delTopicCmd := flag.NewFlagSet("deltopic", flag.ExitOnError)
	delTopicTitle := delTopicCmd.String("title", "", "The topic title.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, string(pwd))
	case "addtopic":
		if err := addTopicCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTopicTitle == "" || *addTopicPrompt == "" {
			addTopicCmd.Usage()
			return errHelp
		}
		return cli.addTopic(*addTopicTitle, *addTopicPrompt)
	case "deltopic":
		if err := delTopicCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *delTopicTitle == "" {
			delTopicCmd.Usage()
			return errHelp
		}
		return cli.delTopic(*delTopicTitle)
	case "migrate":
		return migrateFunc(cli.db)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) addUser(uname, pwd string) error {
	usr := user.User{Username: core.CleanString(uname, true /* lower */)}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(context.Background(), usr)
	return err
}

func (cli *commandLine) addTopic(title, prompt string) error {
	t := topic.Topic{Title: core.CleanString(title), Prompt: core.CleanString(prompt)}
	_, err := cli.topicRepo.CreateTopic(context.Background(), t)
	return err
}

func (cli *commandLine) delTopic(title string) error {
	return cli.topicRepo.DeleteTopicByTitle(context.Background(), core.CleanString(title))
}
