package main

import (
	"github.com/geofleet/svc-location-tracker/internal/runtime"
)

func main() {
	runtime.New().Run()
}
