package pcf8574_test

import (
	"fmt"

	"github.com/mjhouse/ag-lcd/pcf8574"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func ExampleNewBackpack() {
	if _, err := host.Init(); err != nil {
		fmt.Println(err)
		return
	}
	bus, err := i2creg.Open("")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer bus.Close()

	cfg, err := pcf8574.NewBackpack(bus, pcf8574.DefaultAddr)
	if err != nil {
		fmt.Println(err)
		return
	}
	lcd := cfg.Build()
	lcd.BacklightOn()
	lcd.Print("via backpack")
}
