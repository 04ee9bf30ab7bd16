package main

import "StockScope/internal/app"

// analyzer runs one watchlist pass and writes the Excel report.
func main() {
	app.Run(app.Options{Charts: false})
}
