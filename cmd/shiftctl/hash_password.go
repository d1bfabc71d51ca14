package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), app.cfg.Auth.BcryptCost)
			if err != nil {
				return fmt.Errorf("生成密码哈希失败: %w", err)
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}
