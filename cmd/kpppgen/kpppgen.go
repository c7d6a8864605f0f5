// kpppgen builds PPP and PPPoE frames from a TOML description.
//
// Each frame named in the configuration file is encoded and written either
// as a line of hex, prefixed with the frame name, or as a record in a pcap
// file.  All frames written to one pcap file must share the same link.
//
// Usage:
//
//	kpppgen --config frames.toml [--pcap out.pcap] [--verbose]
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
	"github.com/katalix/go-ppp/config"
	"github.com/katalix/go-ppp/stack"
	flag "github.com/spf13/pflag"
)

// pcapSnapLen is the snapshot length written to pcap file headers.
const pcapSnapLen = 65535

type encodedFrame struct {
	name string
	link stack.CodecID
	data []byte
}

func encodeFrames(cfg *config.Config, logger log.Logger) ([]encodedFrame, error) {
	var out []encodedFrame
	for _, f := range cfg.Frames {
		p, err := f.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build frame %v: %v", f.Name, err)
		}
		b, err := stack.Encode(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode frame %v: %v", f.Name, err)
		}
		level.Debug(logger).Log("message", "encoded frame", "name", f.Name, "packet", p, "bytes", len(b))
		out = append(out, encodedFrame{name: f.Name, link: f.Link, data: b})
	}
	return out, nil
}

func writeHex(w io.Writer, frames []encodedFrame) error {
	for _, f := range frames {
		_, err := fmt.Fprintf(w, "%s: %s\n", f.name, hex.EncodeToString(f.data))
		if err != nil {
			return err
		}
	}
	return nil
}

func writePcap(w io.Writer, frames []encodedFrame, ts time.Time) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to write")
	}

	link := frames[0].link
	lt, ok := stack.CodecLinkType(link)
	if !ok {
		return fmt.Errorf("no pcap link type for %v", link)
	}

	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(pcapSnapLen, lt); err != nil {
		return fmt.Errorf("failed to write pcap header: %v", err)
	}

	for i, f := range frames {
		if f.link != link {
			return fmt.Errorf("frame %v has link %v, expect %v for all frames", f.name, f.link, link)
		}
		ci := gopacket.CaptureInfo{
			Timestamp:     ts.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(f.data),
			Length:        len(f.data),
		}
		if err := pw.WritePacket(ci, f.data); err != nil {
			return fmt.Errorf("failed to write frame %v: %v", f.name, err)
		}
	}
	return nil
}

func main() {
	cfgPathPtr := flag.StringP("config", "c", "", "specify frame description file path")
	pcapPathPtr := flag.StringP("pcap", "w", "", "write frames to a pcap file rather than as hex")
	verbosePtr := flag.BoolP("verbose", "v", false, "toggle verbose log output")
	flag.Parse()

	var logger log.Logger
	logger = log.NewLogfmtLogger(os.Stderr)
	if *verbosePtr {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	if *cfgPathPtr == "" {
		stdlog.Fatalf("no configuration file specified")
	}

	cfg, err := config.LoadFile(*cfgPathPtr)
	if err != nil {
		stdlog.Fatalf("failed to load configuration: %v", err)
	}

	frames, err := encodeFrames(cfg, logger)
	if err != nil {
		stdlog.Fatalf("%v", err)
	}

	if *pcapPathPtr == "" {
		err = writeHex(os.Stdout, frames)
	} else {
		var f *os.File
		f, err = os.Create(*pcapPathPtr)
		if err != nil {
			stdlog.Fatalf("failed to create pcap file: %v", err)
		}
		err = writePcap(f, frames, time.Now())
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		level.Error(logger).Log("message", "failed to write frames", "error", err)
		os.Exit(1)
	}
	level.Info(logger).Log("message", "wrote frames", "count", len(frames))
}
