package main

import "dealroom_backend/internal/app"

func main() {
	app.Run()
}
