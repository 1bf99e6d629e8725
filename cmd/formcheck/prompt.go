package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// errAborted signals the user aborted a prompt (Ctrl+C).
var errAborted = errors.New("prompt aborted")

// promptDriver asks the questions remove-row cannot answer from flags.
// Tests swap in a scripted driver.
type promptDriver interface {
	Select(ctx context.Context, message string, options []string) (int, error)
	Int(ctx context.Context, message string, def int) (int, error)
}

type surveyDriver struct{}

func (surveyDriver) Select(ctx context.Context, message string, options []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out string
	prompt := &survey.Select{Message: message, Options: options}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	for i, option := range options {
		if option == out {
			return i, nil
		}
	}
	return -1, nil
}

func (surveyDriver) Int(ctx context.Context, message string, def int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out string
	prompt := &survey.Input{Message: message, Default: strconv.Itoa(def)}
	validate := survey.WithValidator(func(ans any) error {
		s, _ := ans.(string)
		if n, err := strconv.Atoi(s); err != nil || n < 0 {
			return errors.New("enter a row index (0 or greater)")
		}
		return nil
	})
	if err := survey.AskOne(prompt, &out, validate); err != nil {
		return 0, translateSurveyErr(err)
	}
	return strconv.Atoi(out)
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
