// Command textframe inspects and extracts excerpts from large UTF-8
// text files by character offset or line number.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/meigma/textframe"
)

type config struct {
	mode        string
	file        string
	indexPath   string
	saveIndex   string
	granularity int64
	noLines     bool
	begin       int64
	end         int64
	byBytes     bool
	byLines     bool
}

func main() {
	cfg := parseFlags()
	if cfg.file == "" {
		log.Fatal("missing -file")
	}

	var opts []textframe.Option
	if cfg.indexPath != "" {
		opts = append(opts, textframe.WithIndexPath(cfg.indexPath))
	}
	if cfg.granularity > 0 {
		opts = append(opts, textframe.WithGranularity(cfg.granularity))
	}
	if cfg.noLines {
		opts = append(opts, textframe.WithoutLineIndex())
	}

	tf, err := textframe.Open(cfg.file, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer tf.Close()

	if err := run(cfg, tf); err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - Close is best-effort
	}
}

func run(cfg config, tf *textframe.TextFile) error {
	switch cfg.mode {
	case "stat":
		fmt.Printf("path=%s\n", tf.Path())
		fmt.Printf("chars=%d bytes=%d\n", tf.Len(), tf.ByteLen())
		fmt.Printf("checksum=%s\n", tf.Checksum())
		fmt.Printf("modified=%s\n", tf.ModTime().Format("2006-01-02 15:04:05"))
		if count, err := tf.LineCount(); err == nil {
			fmt.Printf("lines=%d\n", count)
		}

	case "cat":
		var text string
		var err error
		switch {
		case cfg.byBytes:
			text, err = tf.GetOrLoadByteRange(cfg.begin, cfg.end)
		case cfg.byLines:
			text, err = tf.GetOrLoadLines(cfg.begin, cfg.end)
		default:
			text, err = tf.GetOrLoad(cfg.begin, cfg.end)
		}
		if err != nil {
			return err
		}
		if _, err := os.Stdout.WriteString(text); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown mode: %s", cfg.mode)
	}

	if cfg.saveIndex != "" {
		if err := tf.SaveIndex(cfg.saveIndex); err != nil {
			return err
		}
	}
	return nil
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "stat", "mode: stat or cat")
	flag.StringVar(&cfg.file, "file", "", "text file to open")
	flag.StringVar(&cfg.indexPath, "index", "", "sidecar index cache path")
	flag.StringVar(&cfg.saveIndex, "save-index", "", "write the index to this path before exiting")
	flag.Int64Var(&cfg.granularity, "granularity", 0, "characters per index checkpoint (0 = default)")
	flag.BoolVar(&cfg.noLines, "no-lines", false, "skip the line index")
	flag.Int64Var(&cfg.begin, "begin", 0, "range begin (negative = from end)")
	flag.Int64Var(&cfg.end, "end", 0, "range end (0 = end of text, negative = from end)")
	flag.BoolVar(&cfg.byBytes, "bytes", false, "interpret the range as absolute byte offsets")
	flag.BoolVar(&cfg.byLines, "lines", false, "interpret the range as line numbers")
	flag.Parse()
	return cfg
}
