// kpppdump decodes PPP and PPPoE frames and prints the resulting layer
// stacks.
//
// Frames are read from a pcap file, from hex strings given on the command
// line, or from hex strings read line by line from stdin.  Each frame is
// decoded using the default binding table and printed either as a one-line
// summary or as a YAML document.
//
// Usage:
//
//	kpppdump [--link ethernet|sll|ppp|pppoe] [--yaml] [--verbose] [hex ...]
//	kpppdump --pcap capture.pcap [--yaml] [--verbose]
//	kpppdump --bindings
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/gopacket/pcapgo"
	"github.com/katalix/go-ppp/stack"
	flag "github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

var linkCodecs = map[string]stack.CodecID{
	"ethernet": stack.CodecEthernet,
	"sll":      stack.CodecLinuxSLL,
	"ppp":      stack.CodecPPP,
	"pppoe":    stack.CodecPPPoE,
}

type kpppdumpConfig struct {
	pcapPath string
	link     stack.CodecID
	yamlOut  bool
	frames   []string
}

type application struct {
	config    *kpppdumpConfig
	logger    log.Logger
	decoder   *stack.Decoder
	out       io.Writer
	count     int
	sigChan   chan os.Signal
	rxChan    chan string
	closeChan chan interface{}
}

func newApplication(cfg *kpppdumpConfig, verbose bool, out io.Writer) *application {
	app := &application{
		config:    cfg,
		out:       out,
		sigChan:   make(chan os.Signal, 1),
		rxChan:    make(chan string),
		closeChan: make(chan interface{}),
	}

	logger := log.NewLogfmtLogger(os.Stderr)
	if verbose {
		app.logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		app.logger = level.NewFilter(logger, level.AllowInfo())
	}

	app.decoder = stack.NewDecoder(stack.DefaultTable(), app.logger)
	return app
}

// dump decodes one frame and prints it.  Decode failures are logged and
// do not stop processing of later frames.
func (app *application) dump(first stack.CodecID, b []byte) error {
	app.count++

	p, err := app.decoder.Decode(first, b)
	if err != nil {
		level.Error(app.logger).Log(
			"message", "failed to decode frame",
			"frame", app.count,
			"error", err)
		return nil
	}

	if app.config.yamlOut {
		return writePacketYAML(app.out, app.count, p)
	}
	_, err = fmt.Fprintf(app.out, "%d: %v\n", app.count, p)
	return err
}

func (app *application) dumpHex(s string) error {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		level.Error(app.logger).Log("message", "bad hex frame", "error", err)
		return nil
	}
	return app.dump(app.config.link, b)
}

func (app *application) dumpPcap(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open pcap file: %v", err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read pcap header: %v", err)
	}

	first, ok := stack.LinkTypeCodec(r.LinkType())
	if !ok {
		return fmt.Errorf("unsupported pcap link type %v", r.LinkType())
	}
	prefix := stack.LinkTypePrefixLen(r.LinkType())
	level.Debug(app.logger).Log("message", "reading pcap", "path", path, "link", r.LinkType())

	for {
		select {
		case <-app.sigChan:
			level.Info(app.logger).Log("message", "received signal, shutting down")
			return nil
		default:
		}

		data, _, err := r.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read pcap record: %v", err)
		}
		err = app.dump(first, data[min(prefix, len(data)):])
		if err != nil {
			return err
		}
	}
}

// dumpReader decodes hex frames read line by line from in.  On a signal it
// returns without waiting for the reader goroutine, which may be blocked
// on an idle input; in is closed if it can be.
func (app *application) dumpReader(in io.Reader) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(app.rxChan)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case app.rxChan <- scanner.Text():
			case <-app.closeChan:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			level.Error(app.logger).Log("message", "failed to read input", "error", err)
		}
	}()

	for {
		select {
		case <-app.sigChan:
			level.Info(app.logger).Log("message", "received signal, shutting down")
			close(app.closeChan)
			if closer, ok := in.(io.Closer); ok {
				closer.Close()
			}
			return nil
		case line, ok := <-app.rxChan:
			if !ok {
				wg.Wait()
				return nil
			}
			err := app.dumpHex(line)
			if err != nil {
				close(app.closeChan)
				return err
			}
		}
	}
}

func (app *application) run(in io.Reader) int {
	var err error

	switch {
	case app.config.pcapPath != "":
		err = app.dumpPcap(app.config.pcapPath)
	case len(app.config.frames) > 0:
		for _, s := range app.config.frames {
			if err = app.dumpHex(s); err != nil {
				break
			}
		}
	default:
		err = app.dumpReader(in)
	}

	if err != nil {
		level.Error(app.logger).Log("message", "dump failed", "error", err)
		return 1
	}
	return 0
}

func printBindings(w io.Writer, table *stack.Table) {
	for _, b := range table.Bindings() {
		fmt.Fprintf(w, "%-16v 0x%04x -> %v\n", b.Outer, b.Value, b.Inner)
	}
}

func main() {
	cfg := kpppdumpConfig{}

	linkPtr := flag.StringP("link", "l", "ethernet", "first layer of hex frames: ethernet, sll, ppp or pppoe")
	flag.StringVarP(&cfg.pcapPath, "pcap", "r", "", "read frames from a pcap file")
	flag.BoolVarP(&cfg.yamlOut, "yaml", "y", false, "print decoded frames as YAML")
	verbosePtr := flag.BoolP("verbose", "v", false, "toggle verbose log output")
	bindingsPtr := flag.Bool("bindings", false, "print the layer binding table and exit")
	flag.Parse()

	if *bindingsPtr {
		printBindings(os.Stdout, stack.DefaultTable())
		return
	}

	link, ok := linkCodecs[*linkPtr]
	if !ok {
		stdlog.Fatalf("unrecognised link '%v'", *linkPtr)
	}
	cfg.link = link
	cfg.frames = flag.Args()

	if cfg.pcapPath != "" && len(cfg.frames) > 0 {
		stdlog.Fatalf("cannot combine --pcap with hex frames")
	}

	app := newApplication(&cfg, *verbosePtr, os.Stdout)
	signal.Notify(app.sigChan, unix.SIGINT, unix.SIGTERM)

	os.Exit(app.run(os.Stdin))
}
