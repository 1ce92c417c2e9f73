package main

import (
	"errors"
	"fmt"

	"github.com/smallbiznis/stockroom/internal/auth"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/setting"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var newPIN string

// setPINCmd resets the manager PIN when nobody can unlock the web UI.
var setPINCmd = &cobra.Command{
	Use:   "set-pin",
	Short: "Replace the manager PIN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if newPIN == "" {
			return errors.New("--pin is required")
		}

		var svc authdomain.Service
		stop, err := runApp(cmd.Context(), []fx.Option{setting.Module, auth.Module}, &svc)
		if err != nil {
			return err
		}
		defer stop()

		if err := svc.ChangePIN(cmd.Context(), authdomain.ChangePINRequest{PIN: newPIN, Confirm: newPIN}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "manager pin updated")
		return nil
	},
}

func init() {
	setPINCmd.Flags().StringVar(&newPIN, "pin", "", "new manager PIN")
}
