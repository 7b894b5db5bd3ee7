// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/ezrec/linkscript/config"
	"github.com/ezrec/linkscript/console"
	"github.com/ezrec/linkscript/hexfmt"
	"github.com/ezrec/linkscript/link"
	"github.com/ezrec/linkscript/scheduler"
	"github.com/ezrec/linkscript/script"
	"github.com/ezrec/linkscript/translate"
)

var f = translate.From

// overrides holds the flag values layered over a profile.
type overrides struct {
	mode       string
	port       string
	baud       int
	dataBits   int
	stopBits   string
	parity     string
	host       string
	tcpPort    int
	listen     string
	localPort  int
	remoteHost string
	remotePort int
	script     string
	watch      bool
	timeout    int
	verbose    bool
}

// apply the flags that were set on the command line.
func (ov *overrides) apply(cfg *config.Config) (err error) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "m":
			var mode link.Mode
			mode, err = link.ParseMode(ov.mode)
			cfg.Link.Mode = mode
		case "port":
			cfg.Link.Serial.Port = ov.port
		case "baud":
			cfg.Link.Serial.BaudRate = ov.baud
		case "databits":
			cfg.Link.Serial.DataBits = ov.dataBits
		case "stopbits":
			cfg.Link.Serial.StopBits = ov.stopBits
		case "parity":
			cfg.Link.Serial.Parity = ov.parity
		case "host":
			cfg.Link.TcpClient.Host = ov.host
		case "p":
			cfg.Link.TcpClient.Port = ov.tcpPort
			cfg.Link.TcpServer.Port = ov.tcpPort
		case "listen":
			cfg.Link.TcpServer.ListenAddr = ov.listen
		case "local":
			cfg.Link.Udp.LocalPort = ov.localPort
		case "remote-host":
			cfg.Link.Udp.RemoteHost = ov.remoteHost
		case "remote-port":
			cfg.Link.Udp.RemotePort = ov.remotePort
		case "s":
			cfg.Script.Path = ov.script
		case "w":
			cfg.Script.Watch = ov.watch
		case "t":
			cfg.Script.ResponseTimeoutMs = ov.timeout
		case "v":
			cfg.Verbose = ov.verbose
		}
	})

	return
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}

// eventPrinter writes events to w, and signals when a script finishes.
func eventPrinter(w io.Writer, finished chan<- scheduler.Event) scheduler.Listener {
	return func(ev scheduler.Event) {
		switch ev.Kind {
		case scheduler.EventOutput:
			fmt.Fprintln(w, ev.Text)
		case scheduler.EventData:
			fmt.Fprintln(w, "<<", hexfmt.Encode(ev.Data))
		case scheduler.EventSent:
			fmt.Fprintln(w, ">>", hexfmt.Encode(ev.Data))
		default:
			fmt.Fprintf(w, "[%v] %v\n", ev.Kind, ev.Text)
		}

		switch ev.Kind {
		case scheduler.EventCompleted, scheduler.EventFailed, scheduler.EventStopped:
			select {
			case finished <- ev:
			default:
			}
		}
	}
}

func main() {
	var profile string
	var list bool
	var send string
	var sendHex bool
	var ov overrides

	flag.StringVar(&profile, "c", "", "TOML profile to load")
	flag.BoolVar(&list, "list", false, "List serial ports and exit")
	flag.StringVar(&send, "send", "", "Text to send once connected")
	flag.BoolVar(&sendHex, "hex", false, "Interpret -send as hex bytes")

	flag.StringVar(&ov.mode, "m", "none", "Link mode: none, serial, tcp-client, tcp-server, udp")
	flag.StringVar(&ov.port, "port", "", "Serial port device")
	flag.IntVar(&ov.baud, "baud", link.DEFAULT_BAUD_RATE, "Serial baud rate")
	flag.IntVar(&ov.dataBits, "databits", link.DEFAULT_DATA_BITS, "Serial data bits")
	flag.StringVar(&ov.stopBits, "stopbits", "1", "Serial stop bits: 1, 1.5, 2")
	flag.StringVar(&ov.parity, "parity", "none", "Serial parity: none, even, odd, mark, space")
	flag.StringVar(&ov.host, "host", "", "TCP client remote host")
	flag.IntVar(&ov.tcpPort, "p", 0, "TCP client remote port, or TCP server listen port")
	flag.StringVar(&ov.listen, "listen", "", "TCP server listen address")
	flag.IntVar(&ov.localPort, "local", 0, "UDP local port")
	flag.StringVar(&ov.remoteHost, "remote-host", "", "UDP default peer host")
	flag.IntVar(&ov.remotePort, "remote-port", 0, "UDP default peer port")
	flag.StringVar(&ov.script, "s", "", "Script file to run")
	flag.BoolVar(&ov.watch, "w", false, "Re-run the script when the file changes")
	flag.IntVar(&ov.timeout, "t", 1000, "Initial response timeout in milliseconds")
	flag.BoolVar(&ov.verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if list {
		ports, err := link.ListPorts()
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
		for _, port := range ports {
			fmt.Println(port)
		}
		return
	}

	cfg := config.Default()
	if len(profile) != 0 {
		var err error
		cfg, err = config.Load(profile)
		if err != nil {
			log.Fatal(err)
		}
	}

	err := ov.apply(&cfg)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	err = cfg.Validate()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	finished := make(chan scheduler.Event, 1)
	con := console.New(cfg.Scheduler(), eventPrinter(os.Stdout, finished), logger)

	// The loop outlives ctx, so Close can still stop a running script.
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		err := con.Run(context.Background())
		if err != nil {
			logger.Error("linkscript: loop", zap.Error(err))
		}
	}()

	err = con.SwitchTransport(ctx, cfg.Link.Mode, cfg.Link)
	if err != nil {
		log.Fatalf("%v: %v", cfg.Link.Mode, err)
	}

	if len(send) != 0 {
		data := []byte(send)
		if sendHex {
			data = hexfmt.Decode(send)
		}
		err = con.Send(ctx, data)
		if err != nil {
			logger.Warn("linkscript: send", zap.Error(err))
		}
	}

	code := 0
	switch {
	case cfg.Script.Watch:
		err = con.WatchScript(ctx, cfg.Script.Path)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("%v: %v", cfg.Script.Path, err)
		}
	case len(cfg.Script.Path) != 0:
		outcome, err := con.ExecuteFile(ctx, cfg.Script.Path)
		if err != nil {
			log.Fatal(err)
		}
		switch outcome.Status {
		case script.Failed:
			code = 1
		case script.Suspended:
			select {
			case ev := <-finished:
				if ev.Kind == scheduler.EventFailed {
					code = 1
				}
			case <-ctx.Done():
			}
		}
	default:
		// Monitor the link until interrupted.
		fmt.Fprintln(os.Stderr, f("%v: monitoring %v, interrupt to exit", os.Args[0], cfg.Link.Mode))
		<-ctx.Done()
	}

	con.Close()
	<-loopDone
	stop()
	logger.Sync()
	os.Exit(code)
}
