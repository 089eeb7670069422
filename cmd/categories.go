package cmd

import (
	"context"
	"fmt"
	"sort"

	"zencms/model"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "以树形列出分类",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}
		categories, err := c.Categories().List(context.Background())
		if err != nil {
			return err
		}

		var roots []*model.Category
		children := make(map[string][]*model.Category)
		for _, cat := range categories {
			if cat.IsRoot() {
				roots = append(roots, cat)
			} else {
				children[*cat.ParentID] = append(children[*cat.ParentID], cat)
			}
		}
		byOrder := func(list []*model.Category) {
			sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
		}

		byOrder(roots)
		for _, root := range roots {
			fmt.Printf("%s  (%s)\n", root.Name, root.ID)
			byOrder(children[root.ID])
			for _, child := range children[root.ID] {
				fmt.Printf("  └─ %s  (%s)\n", child.Name, child.ID)
			}
		}
		fmt.Printf("\n共 %d 个分类\n", len(categories))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
