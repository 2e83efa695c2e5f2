package main

import (
	"github.com/Rodgta01/RouteStorm/pkg/datastructure"
)

func main() {
	stops, err := datastructure.ReadStops("./data/stops.json")
	if err != nil {
		panic(err)
	}
	err = datastructure.WriteStops("./data/stops.json.bz2", stops)
	if err != nil {
		panic(err)
	}
	_, err = datastructure.ReadStops("./data/stops.json.bz2")
	if err != nil {
		panic(err)
	}
}
