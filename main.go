package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ncruces/zenity"
	"golang.org/x/term"

	"github.com/gregLibert/egk-reader/internal/log"
	"github.com/gregLibert/egk-reader/internal/metrics"
	"github.com/gregLibert/egk-reader/pkg/egk"
	"github.com/gregLibert/egk-reader/pkg/pcsc"
	"github.com/gregLibert/egk-reader/pkg/tlv"
)

// exit codes
const (
	exitOK         = 0
	exitError      = 1
	exitNoCard     = 2
	exitIncomplete = 3
)

// atrList collects repeated -atr flags.
type atrList [][]byte

func (a *atrList) String() string {
	parts := make([]string, len(*a))
	for i, atr := range *a {
		parts[i] = fmt.Sprintf("%X", atr)
	}
	return strings.Join(parts, ",")
}

func (a *atrList) Set(s string) error {
	atr, err := tlv.ParseHex(s)
	if err != nil || len(atr) == 0 {
		return fmt.Errorf("invalid ATR %q", s)
	}
	*a = append(*a, atr)
	return nil
}

var (
	readerName  string
	extraATRs   atrList
	anyCard     bool
	skipGDO     bool
	waitFor     time.Duration
	prompt      bool
	format      string
	outputPath  string
	logLevel    string
	logFormat   string
	logSource   string
	statsdAddr  string
	listReaders bool
	versionFlag bool
)

func initCommandLine() {
	flag.StringVar(&readerName, "reader", "", "reader index, name or part of the name (default: first reader)")
	flag.Var(&extraATRs, "atr", "additional accepted ATR in hex, repeatable")
	flag.BoolVar(&anyCard, "any-card", false, "accept cards with any ATR")
	flag.BoolVar(&skipGDO, "no-serial", false, "do not read the card serial number (EF.GDO)")
	flag.DurationVar(&waitFor, "wait", 0, "wait up to this long for a card to be inserted")
	flag.BoolVar(&prompt, "prompt", false, "ask to retry in a dialog when no card is inserted")
	flag.StringVar(&format, "format", "", "output format: text|json|pretty (default: text on a terminal, json otherwise)")
	flag.StringVar(&outputPath, "output", "", "write the report to this file instead of stdout")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	flag.StringVar(&logFormat, "log-format", "text", "log format: text|json|nocolor")
	flag.StringVar(&logSource, "log-source", "short", "source location in log entries: short|long|none")
	flag.StringVar(&statsdAddr, "statsd", "", "statsd address host:port (disabled when empty)")
	flag.BoolVar(&listReaders, "list", false, "list the attached readers and exit")
	flag.BoolVar(&versionFlag, "version", false, "Print version information")
	flag.Parse()
}

func main() {
	initCommandLine()
	if versionFlag {
		fmt.Printf("egk-reader %s (commit %s, built %s)\n", VERSION, GITCOMMIT, BUILDTIME)
		return
	}
	log.SetLevel(logLevel)
	log.SetFormat(logFormat)
	log.SetSourceFormat(logSource)

	os.Exit(run())
}

func run() int {
	if listReaders {
		readers, err := pcsc.ListReaders()
		if err != nil {
			log.Errorf("listing readers: %v", err)
			return exitError
		}
		for i, r := range readers {
			fmt.Printf("%d: %s\n", i, r)
		}
		return exitOK
	}

	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		log.Errorf("%v", err)
		return exitError
	}
	defer closeOut()

	render, err := renderer(format, out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		log.Errorf("%v", err)
		return exitError
	}

	rec, err := metrics.New(statsdAddr)
	if err != nil {
		log.Warnf("statsd %s unavailable, metrics disabled: %v", statsdAddr, err)
	}
	defer rec.Close()

	cfg := egk.DefaultConfig()
	cfg.AllowedATRs = append(cfg.AllowedATRs, extraATRs...)
	cfg.SkipATRCheck = anyCard
	cfg.ReadGDO = !skipGDO
	cfg.Logger = log.With("reader", readerLabel(readerName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opener := &pcsc.Opener{Reader: readerName, Wait: waitFor}
	res, err := readCard(ctx, opener, cfg, rec)
	if err != nil {
		if errors.Is(err, egk.ErrNoCard) {
			log.Errorf("%s: no card inserted", readerLabel(readerName))
			return exitNoCard
		}
		log.Errorf("%v", err)
		return exitError
	}

	rep := buildReport(res)
	if err := render(out, rep); err != nil {
		log.Errorf("writing report: %v", err)
		return exitError
	}
	if len(rep.Errors) > 0 {
		return exitIncomplete
	}
	return exitOK
}

// readCard runs sessions until one finishes; on a missing card the user may be asked
// to insert one and retry.
func readCard(ctx context.Context, opener egk.Opener, cfg egk.Config, rec *metrics.Recorder) (*egk.Result, error) {
	for {
		done := rec.Session()
		res, err := egk.Run(ctx, opener, cfg)
		done(outcome(err))

		if err == nil {
			rec.BytesRead("pd", res.PersonalData.Compressed)
			rec.BytesRead("vd", res.InsuranceData.Compressed)
			return res, nil
		}
		if !errors.Is(err, egk.ErrNoCard) || !prompt {
			return nil, err
		}

		qerr := zenity.Question("Keine Karte gefunden. Bitte die Gesundheitskarte einstecken.",
			zenity.Title("eGK"),
			zenity.OKLabel("Erneut versuchen"),
			zenity.CancelLabel("Abbrechen"),
			zenity.WarningIcon)
		if qerr != nil {
			if !errors.Is(qerr, zenity.ErrCanceled) {
				log.Warnf("retry dialog: %v", qerr)
			}
			return nil, err
		}
		log.Infof("retrying")
	}
}

// outcome names the statsd bucket of a finished session.
func outcome(err error) string {
	var (
		unrecognized *egk.UnrecognizedCardError
		status       *egk.ProtocolStatusError
		transport    *egk.TransportError
		malformed    *egk.MalformedDataError
		rangeErr     *egk.RangeError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, egk.ErrNoCard):
		return "no_card"
	case errors.As(err, &unrecognized):
		return "unrecognized_card"
	case errors.As(err, &status):
		return "protocol_status"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &malformed):
		return "malformed_data"
	case errors.As(err, &rangeErr):
		return "range"
	default:
		return "error"
	}
}

func readerLabel(name string) string {
	if name == "" {
		return "reader 0"
	}
	return name
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.Errorf("closing %s: %v", path, err)
		}
	}, nil
}
