// Package compile implements compile command: loads block documents,
// allocates identifiers, recomputes styles and writes results.
package compile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ghostkit/config"
	"ghostkit/document"
	"ghostkit/state"
	"ghostkit/wxr"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format = env.Cfg.Output.Format
	if cmd.IsSet("format") {
		format, ok := config.ParseOutputFormat(cmd.String("format"))
		if !ok {
			log.Warn("Unknown output format requested, using configured one",
				zap.String("requested", cmd.String("format")), zap.String("format", string(env.Format)))
		} else {
			env.Format = format
		}
	}
	env.Check = env.Cfg.Styles.Check || cmd.Bool("check")
	env.Overwrite = env.Cfg.Output.Overwrite || cmd.Bool("overwrite")
	env.NoDirs = env.Cfg.Output.NoDirs || cmd.Bool("nodirs")
	env.FromWXR = cmd.Bool("wxr")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.String("format", string(env.Format)))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core logic independently of CLI framework.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	format := document.Native
	if env.FromWXR {
		format = wxr.Format(log)
	}

	count := 0
	err := document.Visit(ctx, src, format, log, func(doc *document.Document) error {
		count++
		return processDocument(ctx, doc, dst, log)
	})
	if count == 0 && err == nil {
		log.Warn("Nothing to process", zap.String("source", src))
	}
	return err
}

// processDocument compiles single document into destination directory.
func processDocument(ctx context.Context, doc *document.Document, dst string, log *zap.Logger) (rerr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Compilation starting", zap.String("from", doc.Source))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Compilation ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("compilation panic: %v", r)
		} else if rerr == nil {
			log.Info("Compilation completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	if env.Rpt != nil {
		if data, err := encode(doc, doc.Source); err == nil {
			env.Rpt.StoreData(filepath.ToSlash(filepath.Join("source", doc.Source)), data)
		}
	}

	res, err := compileDocument(doc, env, log)
	if err != nil {
		return err
	}

	outputName = buildOutputPath(doc.Source, dst, env)
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}

	var data []byte
	switch env.Format {
	case config.OutputFormatCSS:
		var css string
		if css, err = res.stylesheet(env); err != nil {
			return fmt.Errorf("unable to prepare stylesheet: %w", err)
		}
		data = []byte(css)
	case config.OutputFormatHTML:
		if data, err = res.markup(env); err != nil {
			return fmt.Errorf("unable to render markup: %w", err)
		}
	case config.OutputFormatDocument:
		if data, err = encode(doc, outputName); err != nil {
			return fmt.Errorf("unable to encode document: %w", err)
		}
	}
	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	if err := env.Rpt.StoreCopy(filepath.ToSlash(filepath.Join("result", filepath.Base(outputName))), outputName); err != nil {
		log.Warn("Unable to store result in the report", zap.Error(err))
	}

	if env.Check {
		return res.check(env, log)
	}
	return nil
}

func prepareOutput(outputName string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
