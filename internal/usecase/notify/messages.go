package notify

import (
	"fmt"
	"strings"
	"time"

	"agrisense/internal/domain/entity"
	"agrisense/internal/infra/notifier"
)

// maxListedLines bounds how many lines a message enumerates.
const maxListedLines = 10

func lowStockMessage(products []entity.Product) notifier.Message {
	title := fmt.Sprintf("Low stock: %d product", len(products))
	if len(products) != 1 {
		title += "s"
	}

	msg := notifier.Message{
		Title:     title,
		Body:      fmt.Sprintf("These products are below %d units and need restocking.", entity.LowStockThreshold),
		Level:     notifier.LevelWarning,
		Timestamp: time.Now().UTC(),
	}
	for i, p := range products {
		if i == maxListedLines {
			msg.Fields = append(msg.Fields, notifier.Field{
				Name:  "More",
				Value: fmt.Sprintf("%d more", len(products)-maxListedLines),
			})
			break
		}
		msg.Fields = append(msg.Fields, notifier.Field{
			Name:  p.Name,
			Value: fmt.Sprintf("%d left (%s)", p.Quantity, p.Category),
		})
	}
	return msg
}

func billMessage(bill *entity.BillReport) notifier.Message {
	var sb strings.Builder
	for i, it := range bill.Items {
		if i == maxListedLines {
			fmt.Fprintf(&sb, "…and %d more lines\n", len(bill.Items)-maxListedLines)
			break
		}
		fmt.Fprintf(&sb, "%d × %s = %.2f\n", it.Quantity, it.Name, it.LineTotal)
	}

	return notifier.Message{
		Title: fmt.Sprintf("New bill #%d for %s", bill.ID, bill.CustomerName),
		Body:  strings.TrimSuffix(sb.String(), "\n"),
		Fields: []notifier.Field{
			{Name: "Total", Value: fmt.Sprintf("%.2f", bill.Total)},
			{Name: "Lines", Value: fmt.Sprintf("%d", len(bill.Items))},
		},
		Level:     notifier.LevelInfo,
		Timestamp: bill.CreatedAt,
	}
}
