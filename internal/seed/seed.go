package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-balancer/backend/internal/repository"
)

// CSV 中必须存在的列，元数据列的值可以为空
var requiredHeaders = []string{"username", "ehp", "ehb", "timezone", "dailyHours"}

// ParseParticipantsCSV 解析参与者导出文件，空的单元格表示该项元数据缺失
func ParseParticipantsCSV(in io.Reader, eventID int64) ([]*domain.Participant, error) {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	for _, key := range requiredHeaders {
		if !slices.Contains(headers, key) {
			return nil, fmt.Errorf("没有找到 %s 列", key)
		}
	}

	participants := []*domain.Participant{}
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		line++

		record := make(map[string]string, len(headers))
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		if record["username"] == "" {
			return nil, fmt.Errorf("第 %d 行没有用户名", line)
		}

		p := &domain.Participant{
			EventID:  eventID,
			Username: record["username"],
		}

		if p.Metadata.EHP, err = parseFloat(record["ehp"]); err != nil {
			return nil, fmt.Errorf("第 %d 行的 ehp 无效: %w", line, err)
		}
		if p.Metadata.EHB, err = parseFloat(record["ehb"]); err != nil {
			return nil, fmt.Errorf("第 %d 行的 ehb 无效: %w", line, err)
		}
		if p.Metadata.DailyHours, err = parseFloat(record["dailyHours"]); err != nil {
			return nil, fmt.Errorf("第 %d 行的 dailyHours 无效: %w", line, err)
		}
		if record["timezone"] != "" {
			tz, err := strconv.ParseInt(record["timezone"], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行的 timezone 无效: %w", line, err)
			}
			offset := int32(tz)
			p.Metadata.Timezone = &offset
		}

		participants = append(participants, p)
	}

	return participants, nil
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ImportParticipants 将 CSV 文件中的参与者导入到指定活动中
func ImportParticipants(r *repository.Repository, eventID int64, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	participants, err := ParseParticipantsCSV(file, eventID)
	if err != nil {
		slog.Error("解析文件失败", "error", err)
		return
	}

	if _, err := r.GetEventByID(eventID); err != nil {
		slog.Error("获取活动失败", "event", eventID, "error", err)
		return
	}

	if err := r.InsertParticipants(participants); err != nil {
		slog.Error("插入参与者失败", "error", err)
		return
	}

	slog.Info("导入参与者完成", "event", eventID, "count", len(participants))
}
