package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var ordersForce bool

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "音乐排序维护",
}

var ordersInitCmd = &cobra.Command{
	Use:   "init",
	Short: "为缺少序号的音乐补齐全局和分类序号",
	Long:  `默认只补齐缺失的序号并保留已有顺序；--force 按创建时间重排全部音乐。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		report, err := c.Music().InitializeOrders(context.Background(), ordersForce)
		if err != nil {
			return err
		}
		fmt.Printf("全局序号更新 %d 条，分类序号更新 %d 条（涉及 %d 个分类）\n",
			report.GlobalUpdated, report.CategoryUpdated, report.Categories)
		return nil
	},
}

var ordersReorderCmd = &cobra.Command{
	Use:   "reorder <categoryId>",
	Short: "把分类内的序号规整为 10, 20, 30...",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		updates, err := c.Music().ReorderCategory(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("分类 %s 已规整，更新 %d 条\n", args[0], len(updates))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersInitCmd, ordersReorderCmd)
	ordersInitCmd.Flags().BoolVar(&ordersForce, "force", false, "忽略已有序号，按创建时间重排")
}
