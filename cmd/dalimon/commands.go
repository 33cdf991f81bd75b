package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luxbus/dalimon/internal/capture"
	"github.com/luxbus/dalimon/internal/config"
	"github.com/luxbus/dalimon/internal/display"
	"github.com/luxbus/dalimon/internal/logging"
	"github.com/luxbus/dalimon/internal/protocol"
	"github.com/luxbus/dalimon/internal/transport"
)

// Command flags
var (
	serialPort   string
	baudRate     int
	noColor      bool
	absoluteTime bool
	strictDecode bool
	logLevel     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&serialPort, "port", "p", "", "use a serial bridge on this port")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", 0, "serial baud rate (default 115200)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log verbosity: debug, info, warn, error (default silent)")

	rootCmd.Flags().BoolVar(&noColor, "nocolor", false, "disable colored output")
	rootCmd.Flags().BoolVar(&absoluteTime, "absolute", false, "add a wall-clock time column")
	rootCmd.Flags().BoolVar(&strictDecode, "strict", false, "keep enabled device types across bus replies when decoding")
}

// openDriver picks the bridge transport from flags, falling back to
// the persisted settings.
func openDriver(settings *config.Settings) (transport.Driver, error) {
	port := serialPort
	baud := baudRate
	if port == "" && settings.Transport.Kind == "serial" {
		port = settings.Transport.Port
	}
	if baud == 0 {
		baud = settings.Transport.Baud
	}

	if port != "" {
		return transport.OpenSerial(port, baud)
	}
	return transport.OpenUSB(settings.Transport.VendorID, settings.Transport.ProductID)
}

func loadSettings() *config.Settings {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", err)
		return config.Default()
	}
	return settings
}

func runCapture(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	settings := loadSettings()

	drv, err := openDriver(settings)
	if err != nil {
		return err
	}

	session := capture.NewSession(drv)
	session.Start()

	// Ctrl-C stops the worker; NextFrame then drains what is queued
	// and reports the session as closed.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		fmt.Fprintln(os.Stderr, "\rinterrupted")
		session.Close()
	}()

	opts := display.Options{AbsoluteTime: absoluteTime || settings.Display.AbsoluteTime}
	if noColor || settings.Display.Color == "never" {
		off := false
		opts.Color = &off
	} else if settings.Display.Color == "always" {
		on := true
		opts.Color = &on
	}
	renderer := display.NewRenderer(opts)

	var decodeOpts []protocol.Option
	if strictDecode {
		decodeOpts = append(decodeOpts, protocol.WithStrictCarryover())
	}
	decoder := protocol.NewDecoder(decodeOpts...)
	deviceCtx := protocol.NewDeviceContext()

	for {
		frame, err := session.NextFrame()
		if err != nil {
			if errors.Is(err, capture.ErrSessionClosed) {
				return nil
			}
			return err
		}

		switch frame.Kind {
		case protocol.FrameCommand:
			decoded := decoder.Decode(frame, deviceCtx)
			fmt.Println(renderer.Command(frame, decoded))
			deviceCtx = decoded.Next
		case protocol.FrameError:
			fmt.Println(renderer.BusError(frame))
		}
	}
}

var sendCmd = &cobra.Command{
	Use:   "send <byte> [byte] [byte]",
	Short: "Transmit a command onto the bus",
	Long: `Transmit a 1-3 byte command onto the bus through the bridge.

Bytes are hexadecimal. Two bytes form a 16-bit forward frame (address,
opcode), three a 24-bit frame, one an 8-bit frame.`,
	Example: `  # broadcast RECALL MAX LEVEL
  dalimon send ff 05

  # DAPC 128 to short address 3
  dalimon send 06 80`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	payload := make([]byte, len(args))
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 16, 8)
		if err != nil {
			return fmt.Errorf("invalid command byte %q: %w", arg, err)
		}
		payload[i] = byte(v)
	}

	drv, err := openDriver(loadSettings())
	if err != nil {
		return err
	}

	session := capture.NewSession(drv)
	defer session.Close()

	if err := session.Send(payload); err != nil {
		return err
	}
	fmt.Printf("sent % 02X\n", payload)
	return nil
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached USB bridge devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}
		defer logging.Sync()

		settings := loadSettings()
		found, err := transport.ListUSB(settings.Transport.VendorID, settings.Transport.ProductID)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Println("no bridge devices found")
			return nil
		}
		for _, dev := range found {
			fmt.Println(dev)
		}
		return nil
	},
}
