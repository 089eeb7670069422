// Package audio 读取上传音频的元数据。
package audio

import "context"

// Prober 读取音频文件的时长（秒）
type Prober interface {
	Duration(ctx context.Context, inputFile string) (float64, error)
}
