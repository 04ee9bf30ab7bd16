package main

import "StockScope/internal/app"

// chartbook runs one watchlist pass and writes the Excel report plus the
// six-page PDF chart bundle.
func main() {
	app.Run(app.Options{Charts: true})
}
