package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/randalmurphal/quasi/pkg/quasi"
	"github.com/randalmurphal/quasi/pkg/quasi/expr"
)

// escape writes text as a template that renders back to it. With --words
// each input line becomes one word of a ww template.
func (a *app) escape(cmd *escapeCmd) error {
	text, err := a.readInput(cmd.File)
	if err != nil {
		return err
	}

	if !cmd.Words {
		_, err = fmt.Fprint(a.stdout, quasi.Encode(text))
		return err
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		words = append(words, quasi.EncodeWord(line))
	}
	_, err = fmt.Fprintln(a.stdout, strings.Join(words, " "))
	return err
}

func (a *app) funcs() error {
	for _, name := range expr.New().Funcs() {
		if _, err := fmt.Fprintln(a.stdout, name); err != nil {
			return err
		}
	}
	return nil
}

// cache lists the entries of a render cache, or purges it.
func (a *app) cache(cmd *cacheCmd) error {
	store, err := a.openStore(cmd.DB)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	if cmd.Purge {
		return store.Purge()
	}

	infos, err := store.List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tMODE\tSEQ\tSIZE\tCREATED")
	for _, info := range infos {
		key := info.Key
		if len(key) > 12 {
			key = key[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			key, info.Mode, info.Sequence, info.Size, info.Timestamp.Format(time.RFC3339))
	}
	return tw.Flush()
}
