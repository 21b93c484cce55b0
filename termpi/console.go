package main

import (
	"log"
	"os"

	"github.com/itohio/touchterm/pkg/gesture"
	"github.com/itohio/touchterm/pkg/terminal"
)

// console logs what the panel shows.
type console struct{}

func (console) DrawRegion(r *gesture.Region) {
	if r.Pressed {
		log.Printf("key [%s] down", r.Label)
	} else {
		log.Printf("key [%s] up", r.Label)
	}
}

func (console) AppendLog(dir terminal.Direction, text string) {
	log.Printf("%s| %s", dir, text)
}

func (console) ClearLog(dir terminal.Direction) {
	log.Printf("%s| --", dir)
}

func (console) RefreshInput(text string) {
	log.Printf("Input: %s", text)
}

func loadStorage(term *terminal.Terminal, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	return term.LoadStorage(f)
}

func saveStorage(term *terminal.Terminal, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := term.SaveStorage(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
