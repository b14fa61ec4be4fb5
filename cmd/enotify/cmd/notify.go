package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/enotify/enotify/internal/credentials"
	"github.com/enotify/enotify/internal/mailer"
	"github.com/enotify/enotify/internal/notifier"
	"github.com/enotify/enotify/internal/procwatch"
	"github.com/spf13/cobra"
)

var (
	notifyPID      int32
	notifyAttach   []string
	notifyTo       []string
	notifyDestList string
	watchWorker    bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Watch a process and mail a notification when it ends",
	Long: `Validates that the target process exists, proves the SMTP credentials
with a test login, then detaches a background task that waits for the process
to terminate and sends the notification mail.

The SMTP password is taken from the ` + credentials.EnvVar + ` environment
variable when set, otherwise it is prompted for without echoing.

Example:
  enotify notify --pid 4242
  enotify notify --pid 4242 --attach 'logs/*.log' --to ops@example.com`,
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	notifyCmd.Flags().Int32Var(&notifyPID, "pid", 0, "PID of the process to watch")
	notifyCmd.Flags().StringArrayVar(&notifyAttach, "attach", nil, "file pattern to attach to the mail, may repeat, wildcards allowed")
	notifyCmd.Flags().StringSliceVar(&notifyTo, "to", nil, "receiver(s) of the mail")
	notifyCmd.Flags().StringVar(&notifyDestList, "destlist", "", "file containing receivers, one per line")
	notifyCmd.Flags().BoolVar(&watchWorker, "watch-worker", false, "run the detached watch loop (internal)")

	notifyCmd.MarkFlagRequired("pid")
	notifyCmd.MarkFlagsMutuallyExclusive("to", "destlist")
	notifyCmd.Flags().MarkHidden("watch-worker")
}

func runNotify(cmd *cobra.Command, args []string) error {
	req := notifier.WatchRequest{
		PID:            notifyPID,
		AttachPatterns: notifyAttach,
		To:             notifyTo,
		DestListFile:   notifyDestList,
	}

	cfg := store.Config()
	transport := mailer.NewSMTPTransport(cfg, log)
	creds := credentials.NewEnvPromptSource(log)
	orch := notifier.New(cfg, transport, creds, log)

	// Background half: the parent already proved the credentials and put
	// the password in our environment before detaching us.
	if watchWorker {
		password := os.Getenv(credentials.EnvVar)
		if password == "" {
			return errors.New("watch worker started without " + credentials.EnvVar)
		}
		return orch.RunWatch(req, password)
	}

	password, err := orch.Prepare(req)
	if err != nil {
		if errors.Is(err, procwatch.ErrProcessNotFound) {
			fmt.Printf("The process with PID : %d does not exist\n", req.PID)
		}
		if errors.Is(err, notifier.ErrAuthExhausted) {
			fmt.Println("You failed your password too many times")
		}
		return err
	}

	childPID, err := notifier.Detach(workerArgs(req), password)
	if err != nil {
		return err
	}
	fmt.Printf("Watching pid %d in background task %d\n", req.PID, childPID)
	return nil
}

// workerArgs rebuilds the notify invocation for the detached child, with the
// hidden worker flag set.
func workerArgs(req notifier.WatchRequest) []string {
	args := []string{"notify", "--watch-worker", "--pid", strconv.Itoa(int(req.PID))}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	if logLevel != "" {
		args = append(args, "--log-level", logLevel)
	}
	for _, pattern := range req.AttachPatterns {
		args = append(args, "--attach", pattern)
	}
	for _, addr := range req.To {
		args = append(args, "--to", addr)
	}
	if req.DestListFile != "" {
		args = append(args, "--destlist", req.DestListFile)
	}
	return args
}
