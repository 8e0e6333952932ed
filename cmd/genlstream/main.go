// Command genlstream joins a generic netlink multicast group and prints every
// message the kernel publishes on it.
//
//	genlstream FAMILY_NAME MULTICAST_GROUP_NAME
//
// Configuration can be set via flags or environment variables of the form
// GENLSTREAM_<flag> (e.g. GENLSTREAM_LOG_LEVEL=debug), also read from .env.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/oy3o/nlcodec"
	"github.com/oy3o/nlcodec/nlmsg"
)

const (
	// Wrap is the number of characters to wrap the help text at
	Wrap int = 50
)

type config struct {
	LogLevel logLevel
	Record   string
	Replay   string
	Backlog  int
	Metrics  bool
}

var (
	cmdConfig = &config{}
	rootCmd   = &cobra.Command{
		Use:   "genlstream FAMILY_NAME MULTICAST_GROUP_NAME",
		Short: "Print the messages of a generic netlink multicast group",
		Long: fmt.Sprintf(`Join a generic netlink multicast group and print every message published on it.

The message source is %q. Configuration can be set via command line flags or
environment variables. The format of the environment variables is
GENLSTREAM_<flag> (e.g. GENLSTREAM_LOG_LEVEL=debug)`, nlmsg.SourceMode),
		Args:          validateArgs,
		PreRunE:       processConfig,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	messagesTotal = metrics.NewCounter("genlstream_messages_total")
	errorsTotal   = metrics.NewCounter("genlstream_message_errors_total")
	recordedBytes = metrics.NewCounter("genlstream_recorded_bytes_total")
)

func init() {
	cobra.OnInitialize(initConfig)

	key := "log-level"
	rootCmd.PersistentFlags().String(key, "info", wrapString("The level at which logs will be output (debug, info, warn, error)"))

	key = "record"
	rootCmd.PersistentFlags().String(key, "", wrapString("Append every received message to this file"))

	key = "replay"
	rootCmd.PersistentFlags().String(key, "", wrapString("Read messages from a file written with --record instead of the socket. FAMILY_NAME and MULTICAST_GROUP_NAME are not needed"))

	key = "backlog"
	rootCmd.PersistentFlags().Int(key, 64, wrapString("Number of decoded messages buffered ahead of printing (push source only)"))

	key = "metrics"
	rootCmd.PersistentFlags().Bool(key, false, wrapString("Print message counters in Prometheus text format on exit"))
}

// initConfig reads in .env files and ENV variables if set.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("genlstream")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func validateArgs(cmd *cobra.Command, args []string) error {
	replay, _ := cmd.Flags().GetString("replay")
	if replay == "" && os.Getenv("GENLSTREAM_REPLAY") == "" {
		return cobra.ExactArgs(2)(cmd, args)
	}
	return cobra.MaximumNArgs(2)(cmd, args)
}

// processConfig reads the configuration from the command line flags and
// environment variables.
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	level, err := parseLogLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	cmdConfig.LogLevel = level
	cmdConfig.Record = viper.GetString("record")
	cmdConfig.Replay = viper.GetString("replay")
	cmdConfig.Backlog = viper.GetInt("backlog")
	cmdConfig.Metrics = viper.GetBool("metrics")

	if cmdConfig.Backlog < 0 {
		return fmt.Errorf("invalid backlog %d", cmdConfig.Backlog)
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	log := newLogger(os.Stderr, "genlstream", cmdConfig.LogLevel)
	if cmdConfig.Metrics {
		defer metrics.WritePrometheus(os.Stderr, false)
	}

	var rx nlmsg.Receiver
	if cmdConfig.Replay != "" {
		f, err := os.Open(cmdConfig.Replay)
		if err != nil {
			return err
		}
		defer f.Close()
		if rx, err = nlmsg.NewReaderReceiver(f); err != nil {
			return err
		}
		log.Infof("replaying %s", cmdConfig.Replay)
	} else {
		conn, err := subscribe(log, args[0], args[1])
		if err != nil {
			return err
		}
		defer conn.Close()

		// Close unblocks a pending Receive once the context is done.
		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()
		rx = &socketReceiver{conn: conn}
	}

	var rec *nlcodec.Writer
	if cmdConfig.Record != "" {
		f, err := os.OpenFile(cmdConfig.Record, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		rec, _ = nlcodec.NewWriter(f)
		log.Infof("recording to %s", cmdConfig.Record)
	}

	src := nlmsg.NewSource(rx, cmdConfig.Backlog)
	log.Debugf("reading messages with the %s source", nlmsg.SourceMode)

	err := src.Run(ctx, func(m nlmsg.Message) error {
		messagesTotal.Inc()
		if rec != nil {
			before := rec.Count()
			rec.WriteNl(m)
			if err := rec.Err(); err != nil {
				return fmt.Errorf("recording message: %w", err)
			}
			recordedBytes.Add(int(rec.Count() - before))
		}
		if err := printMessage(os.Stdout, m); err != nil {
			errorsTotal.Inc()
			log.Warningf("seq %d: %v", m.Header.Seq, err)
		}
		return nil
	})

	switch {
	case err == nil:
		log.Infof("end of stream after %d messages", messagesTotal.Get())
		return nil
	case ctx.Err() != nil:
		log.Infof("stopped after %d messages", messagesTotal.Get())
		return nil
	default:
		return err
	}
}

// subscribe opens a generic netlink socket and joins the named multicast group.
func subscribe(log *logger, family, group string) (*genetlink.Conn, error) {
	conn, err := genetlink.Dial(&netlink.Config{})
	if err != nil {
		return nil, fmt.Errorf("dialing generic netlink: %w", err)
	}

	f, id, err := resolveGroup(conn, family, group)
	if err != nil {
		conn.Close()
		return nil, err
	}
	flag, err := nlcodec.NewBitFlag(id)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%d is too large of a group number: %w", id, err)
	}
	mask := flag.Mask()
	for _, g := range mask.Groups() {
		if err := conn.JoinGroup(g); err != nil {
			conn.Close()
			return nil, fmt.Errorf("joining group %d: %w", g, err)
		}
	}
	log.Infof("family %s (id %d) joined %s %s", f.Name, f.ID, group, mask)
	return conn, nil
}

// printMessage writes m and, for generic netlink payloads, its attribute tree.
func printMessage(w io.Writer, m nlmsg.Message) error {
	switch m.Header.Type {
	case nlmsg.Error:
		_, err := fmt.Fprintf(w, "%s error=%v\n", m, m.Err())
		return err
	case nlmsg.Noop, nlmsg.Done, nlmsg.Overrun:
		_, err := fmt.Fprintln(w, m)
		return err
	}

	g, err := nlmsg.ParseGenl(m.Payload)
	if _, werr := fmt.Fprintf(w, "%s %s\n", m, g); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	return printAttrs(w, g.Attrs, 1)
}

func printAttrs(w io.Writer, attrs []nlmsg.Attr, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, a := range attrs {
		raw, err := a.Bytes()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%s % x\n", indent, a, []byte(raw)); err != nil {
			return err
		}
		if !a.Nested() {
			continue
		}
		children, err := a.Children()
		if err != nil {
			return err
		}
		if err := printAttrs(w, children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// wrapString wraps a string at Wrap characters
func wrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += len(word)
	}
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}
	return strings.Join(wrappedLines, "\n")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, nlcodec.ErrBitOutOfRange) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
