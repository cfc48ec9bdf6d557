// Demo binary: deploys a Wasm file to a fresh in-memory ledger, runs
// its main export and prints the gas report.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	scvm "github.com/halcyonchain/scvm"
	"github.com/halcyonchain/scvm/ledger"
	"github.com/halcyonchain/scvm/types"
)

const gasLimit = 100_000_000

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: demo <module.wasm>")
		os.Exit(2)
	}
	bytecode, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	led := ledger.New(logger)
	vm, err := scvm.NewVM(types.VMConfig{Interface: led}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer vm.Close(context.Background())

	address, err := vm.CreateModule(bytecode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("deployed at %s\n", address)

	resp, rep, err := vm.Call(address, scvm.MainEntry, nil, 0, gasLimit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("returned %d bytes, gas used %d of %d (remaining %d)\n",
		len(resp.Ret), rep.Used, rep.Limit, rep.Remaining)
}
