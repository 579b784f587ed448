package reporting

import (
	"fmt"
	"strings"
)

// RenderSessionsCSV renders session rows as CSV.
func RenderSessionsCSV(rows []SessionRow) string {
	var sb strings.Builder

	sb.WriteString("session_id,condition_id,token_id,status,volume,iterations,wallet_count,trade_count,start_time,end_time\n")
	for _, r := range rows {
		end := ""
		if r.EndTime != nil {
			end = fmt.Sprintf("%d", *r.EndTime)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.6f,%d,%d,%d,%d,%s\n",
			r.SessionID, r.ConditionID, r.TokenID, r.Status,
			r.Volume, r.Iterations, r.WalletCount, r.TradeCount,
			r.StartTime, end))
	}
	return sb.String()
}

// RenderTradesCSV renders trade rows as CSV.
func RenderTradesCSV(rows []TradeRow) string {
	var sb strings.Builder

	sb.WriteString("logged_at,nickname,wallet_index,side,price,size,trade_type,order_id\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%d,%s,%.6f,%.6f,%s,%s\n",
			r.LoggedAt, r.Nickname, r.WalletIndex, r.Side,
			r.Price, r.Size, r.TradeType, r.OrderID))
	}
	return sb.String()
}
