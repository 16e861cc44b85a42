package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"parley/internal/model"
)

// CSV 列头, 顺序是导出文件格式的一部分
var csvHeader = []string{
	"Chat_ID",
	"Chat_Title",
	"Chat_Created_At",
	"Model_Name",
	"Message_Role",
	"Message_Content",
	"Message_Timestamp",
	"Msg_Processing_Time_Sec",
}

// UTF-8 BOM, 让电子表格软件正确识别编码
const bom = "\xef\xbb\xbf"

// JSON 渲染完整会话数组
// ID 与时间戳经各自的 marshaler 输出为规范字符串形式
func JSON(chats []*model.Chat) ([]byte, error) {
	if chats == nil {
		chats = []*model.Chat{}
	}
	return json.MarshalIndent(chats, "", "  ")
}

// CSV 展平渲染: 每条消息一行, 无消息的会话占一行; 分隔符为分号
func CSV(w io.Writer, chats []*model.Chat) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, chat := range chats {
		id := chat.ID.Hex()
		createdAt := chat.CreatedAt.UTC().Format(time.RFC3339)

		if len(chat.Messages) == 0 {
			row := []string{id, chat.Title, createdAt, chat.ModelName, "", "", "", ""}
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}

		for _, msg := range chat.Messages {
			row := []string{
				id,
				chat.Title,
				createdAt,
				chat.ModelName,
				msg.Role,
				msg.Content,
				msg.Timestamp.UTC().Format(time.RFC3339),
				processingTime(msg.Meta),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename 带时间戳的导出文件名
func Filename(format string) string {
	return "chat_history_" + time.Now().Format("20060102_150405") + "." + format
}

// processingTime 生成耗时元数据的单元格值, 缺失为空
func processingTime(meta map[string]any) string {
	v, ok := meta["processing_time"]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}
