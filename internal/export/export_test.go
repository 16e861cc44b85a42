package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"parley/internal/model"
)

func sampleChat() *model.Chat {
	id, _ := primitive.ObjectIDFromHex("65a1b2c3d4e5f6a7b8c9d0e1")
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Chat{
		ID:        id,
		Title:     "Weather talk",
		ModelName: "qwen2:0.5b-instruct",
		CreatedAt: created,
		Messages: []model.Message{
			{
				Role:      model.RoleUser,
				Content:   "Is it raining?",
				Timestamp: created.Add(time.Second),
			},
			{
				Role:      model.RoleAssistant,
				Content:   "Probably not.",
				Timestamp: created.Add(3 * time.Second),
				Meta: map[string]any{
					"processing_time": 1.42,
					"model_used":      "qwen2:0.5b-instruct",
				},
			},
		},
	}
}

func TestJSON(t *testing.T) {
	Convey("JSON 导出完整会话数组", t, func() {
		Convey("ID 和时间戳输出为字符串", func() {
			data, err := JSON([]*model.Chat{sampleChat()})
			So(err, ShouldBeNil)

			var decoded []map[string]any
			So(json.Unmarshal(data, &decoded), ShouldBeNil)
			So(decoded, ShouldHaveLength, 1)
			So(decoded[0]["id"], ShouldEqual, "65a1b2c3d4e5f6a7b8c9d0e1")
			So(decoded[0]["created_at"], ShouldEqual, "2024-03-01T10:00:00Z")

			msgs := decoded[0]["messages"].([]any)
			So(msgs, ShouldHaveLength, 2)
			second := msgs[1].(map[string]any)
			So(second["role"], ShouldEqual, "assistant")
			So(second["meta"].(map[string]any)["processing_time"], ShouldEqual, 1.42)
		})

		Convey("nil 输入渲染为空数组而不是 null", func() {
			data, err := JSON(nil)
			So(err, ShouldBeNil)
			So(strings.TrimSpace(string(data)), ShouldEqual, "[]")
		})
	})
}

func TestCSV(t *testing.T) {
	Convey("CSV 展平导出", t, func() {
		Convey("输出以 UTF-8 BOM 开头, 分号分隔", func() {
			var buf bytes.Buffer
			So(CSV(&buf, []*model.Chat{sampleChat()}), ShouldBeNil)

			raw := buf.String()
			So(strings.HasPrefix(raw, "\xef\xbb\xbf"), ShouldBeTrue)

			firstLine := strings.SplitN(strings.TrimPrefix(raw, "\xef\xbb\xbf"), "\n", 2)[0]
			So(firstLine, ShouldContainSubstring, "Chat_ID;Chat_Title;Chat_Created_At;Model_Name")
		})

		Convey("每条消息一行, 会话列重复", func() {
			var buf bytes.Buffer
			So(CSV(&buf, []*model.Chat{sampleChat()}), ShouldBeNil)

			r := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\xef\xbb\xbf")))
			r.Comma = ';'
			rows, err := r.ReadAll()
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3) // 表头 + 两条消息

			So(rows[1][0], ShouldEqual, "65a1b2c3d4e5f6a7b8c9d0e1")
			So(rows[2][0], ShouldEqual, rows[1][0])
			So(rows[1][4], ShouldEqual, "user")
			So(rows[1][6], ShouldEqual, "2024-03-01T10:00:01Z")
			So(rows[2][4], ShouldEqual, "assistant")
			So(rows[2][5], ShouldEqual, "Probably not.")
		})

		Convey("生成耗时只在带元数据的行出现", func() {
			var buf bytes.Buffer
			So(CSV(&buf, []*model.Chat{sampleChat()}), ShouldBeNil)

			r := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\xef\xbb\xbf")))
			r.Comma = ';'
			rows, _ := r.ReadAll()
			So(rows[1][7], ShouldEqual, "")
			So(rows[2][7], ShouldEqual, "1.42")
		})

		Convey("无消息的会话占一行, 消息列留空", func() {
			chat := sampleChat()
			chat.Messages = nil

			var buf bytes.Buffer
			So(CSV(&buf, []*model.Chat{chat}), ShouldBeNil)

			r := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\xef\xbb\xbf")))
			r.Comma = ';'
			rows, err := r.ReadAll()
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[1][1], ShouldEqual, "Weather talk")
			So(rows[1][4], ShouldEqual, "")
			So(rows[1][5], ShouldEqual, "")
			So(rows[1][6], ShouldEqual, "")
			So(rows[1][7], ShouldEqual, "")
		})

		Convey("消息内容里的分号和换行被正确转义", func() {
			chat := sampleChat()
			chat.Messages[0].Content = "first; still first\nsecond line"

			var buf bytes.Buffer
			So(CSV(&buf, []*model.Chat{chat}), ShouldBeNil)

			r := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\xef\xbb\xbf")))
			r.Comma = ';'
			rows, err := r.ReadAll()
			So(err, ShouldBeNil)
			So(rows[1][5], ShouldEqual, "first; still first\nsecond line")
		})
	})
}

func TestFilename(t *testing.T) {
	Convey("Filename 带时间戳与扩展名", t, func() {
		name := Filename("csv")
		So(name, ShouldStartWith, "chat_history_")
		So(name, ShouldEndWith, ".csv")
	})
}
