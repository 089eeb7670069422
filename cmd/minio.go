package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"zencms/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioStats  bool
	minioDelete bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶管理",
	Long:  `查看和管理素材存储桶中的文件，支持列出文件、查看统计信息、删除目录。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}
		store := storage.GetMinioStore()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if minioDelete {
			if minioPrefix == "" {
				return fmt.Errorf("删除操作需要指定目录前缀")
			}
			n, err := store.DeletePrefix(ctx, minioPrefix)
			if err != nil {
				return fmt.Errorf("删除目录失败: %w", err)
			}
			fmt.Printf("已删除 %d 个对象 (前缀: %s)\n", n, minioPrefix)
			return nil
		}

		objects, stats, err := store.ListObjects(ctx, minioPrefix)
		if err != nil {
			return fmt.Errorf("列出文件失败: %w", err)
		}

		if minioStats {
			fmt.Printf("对象数量: %d\n", stats.TotalObjects)
			fmt.Printf("总大小: %s\n", storage.FormatSize(stats.TotalSize))
			if !stats.LastModified.IsZero() {
				fmt.Printf("最后修改: %s\n", stats.LastModified.Format(time.RFC3339))
			}
			categories := make([]string, 0, len(stats.ByCategory))
			for c := range stats.ByCategory {
				categories = append(categories, c)
			}
			sort.Strings(categories)
			for _, c := range categories {
				fmt.Printf("  %-10s %s\n", c+"/", storage.FormatSize(stats.ByCategory[c]))
			}
			return nil
		}

		for _, obj := range objects {
			fmt.Printf("%-60s %10s  %s\n", obj.Key, storage.FormatSize(obj.Size), obj.LastModified.Format("2006-01-02 15:04"))
		}
		fmt.Printf("\n共 %d 个文件\n", len(objects))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件或指定要操作的目录")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "显示存储桶统计信息")
	minioCmd.Flags().BoolVarP(&minioDelete, "delete", "d", false, "删除指定目录及其下的所有文件")

	minioCmd.Example = `  # 列出所有文件
  zencms minio

  # 只看图片目录
  zencms minio -p "images/"

  # 显示存储桶统计信息
  zencms minio -s

  # 删除目录及其下的所有文件
  zencms minio -d -p "library/"`
}
