package cmd

import (
	"fmt"

	"zencms/core/auth"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "管理员口令和访问令牌工具",
}

var tokenHashCmd = &cobra.Command{
	Use:   "hash <password>",
	Short: "生成 ADMIN_PASSWORD_HASH 使用的 bcrypt 哈希",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "用 JWT_SECRET 为管理员签发访问令牌（写入 ZENCMS_TOKEN 供命令行使用）",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.AuthEnabled() {
			return fmt.Errorf("JWT_SECRET is not set")
		}
		token, expires, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL).Issue(cfg.AdminUsername)
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Printf("expires at %s\n", expires.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenHashCmd, tokenIssueCmd)
}
