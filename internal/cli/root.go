// Package cli implements receiptctl, the terminal front end of the receipt API.
package cli

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sangkips/schoolfee-receipts/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultServer = "http://localhost:8080"

type app struct {
	v *viper.Viper
}

// NewRootCommand builds the receiptctl command tree. The server address comes
// from --server or RECEIPTCTL_SERVER.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("RECEIPTCTL")
	a.v.AutomaticEnv()
	a.v.SetDefault("server", defaultServer)
	a.v.SetDefault("timeout", 60*time.Second)

	root := &cobra.Command{
		Use:           "receiptctl",
		Short:         "Issue, browse and print school fee receipts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", defaultServer, "receipt API base URL")
	root.PersistentFlags().Duration("timeout", 60*time.Second, "timeout for a single request")
	_ = a.v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = a.v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	root.AddCommand(
		a.listCommand(),
		a.getCommand(),
		a.createCommand(),
		a.updateCommand(),
		a.deleteCommand(),
		a.downloadCommand(),
		a.nextNumberCommand(),
		a.exportCommand(),
	)
	return root
}

func (a *app) client() *client.Client {
	return client.New(a.v.GetString("server"), client.WithTimeout(a.v.GetDuration("timeout")))
}

// failure turns err into the sentence a person should read
func failure(err error, fallback string) error {
	return errors.New(client.UserMessage(err, fallback))
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
