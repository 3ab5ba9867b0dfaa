package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/hr-management/internal/notification"
	"github.com/frahmantamala/hr-management/pkg/logger"
	"github.com/spf13/cobra"
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Outbound mail commands",
}

var mailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send one test email through the mail pool",
	Long:  `Send a single message through the configured sender and worker pool to check SMTP settings.`,
	Run: func(cmd *cobra.Command, args []string) {
		sendTestMail()
	},
}

var (
	mailTo      string
	mailSubject string
)

func sendTestMail() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	to := mailTo
	if to == "" {
		to = cfg.Mail.HRAddress
	}
	if to == "" {
		fmt.Fprintln(os.Stderr, "no recipient: pass --to or set mail.hr_address")
		os.Exit(1)
	}

	pool := notification.NewPool(notification.NewSender(cfg.Mail, lg), notification.PoolConfig{
		Workers:   1,
		QueueSize: 1,
	}, lg)
	defer pool.Shutdown()

	lg.Info("sending test mail", "to", to, "smtp_enabled", cfg.Mail.Enabled, "host", cfg.Mail.Host)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = pool.Send(ctx, notification.Message{
		To:      []string{to},
		Subject: mailSubject,
		Body:    "This is a test message from hr-management.",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send test mail: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("test mail sent to", to)
}

func init() {
	mailTestCmd.Flags().StringVar(&mailTo, "to", "", "recipient (defaults to mail.hr_address)")
	mailTestCmd.Flags().StringVar(&mailSubject, "subject", "hr-management test mail", "subject line")

	mailCmd.AddCommand(mailTestCmd)
	rootCmd.AddCommand(mailCmd)
}
