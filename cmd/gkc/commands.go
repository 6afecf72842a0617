package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ghostkit/blocks"
	"ghostkit/config"
	"ghostkit/state"
)

func listTypes(_ context.Context, cmd *cli.Command) error {
	registry := blocks.Builtin()

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	for _, name := range registry.Names() {
		t, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		var kind string
		switch {
		case !t.Styles:
			kind = "no custom styles"
		case t.Callback == nil:
			kind = "custom styles, kept as stored"
		default:
			kind = "custom styles"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, t.BaseClass, kind)
	}
	return tw.Flush()
}

func dumpConfiguration(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var data []byte
	what := "actual"
	if cmd.Bool("default") {
		what = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	var out io.Writer = os.Stdout
	fname := cmd.Args().Get(0)
	if len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	} else {
		fname = "STDOUT"
	}
	env.Log.Info("Writing configuration", zap.String("state", what), zap.String("file", fname))

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
