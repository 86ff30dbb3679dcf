package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/linalloc"
)

var (
	padAddr        uint64
	padAlign       uint64
	padHeaderSize  uint64
	padHeaderAlign uint64
)

func init() {
	cmd := newPaddingCmd()
	cmd.Flags().Uint64Var(&padAddr, "addr", 0, "Address (or offset) to align")
	cmd.Flags().Uint64Var(&padAlign, "align", uint64(linalloc.DefaultAlignment), "Block alignment, a power of two")
	cmd.Flags().Uint64Var(&padHeaderSize, "header-size", 0, "Bytes reserved in front of the block")
	cmd.Flags().Uint64Var(&padHeaderAlign, "header-align", 1, "Header alignment, a power of two")
	rootCmd.AddCommand(cmd)
}

func newPaddingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "padding",
		Short: "Compute alignment padding for an address",
		Long: `The padding command prints the next aligned address and the padding an
allocator inserts in front of a block, optionally leaving room for a header.

Example:
  linalloc padding --addr 585 --align 4 --header-size 24 --header-align 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPadding()
		},
	}
}

type paddingResult struct {
	Addr        uint64 `json:"addr"`
	Alignment   uint64 `json:"alignment"`
	HeaderSize  uint64 `json:"header_size"`
	HeaderAlign uint64 `json:"header_alignment"`
	AlignedAddr uint64 `json:"aligned_addr"`
	Padding     uint64 `json:"padding"`
	BlockAddr   uint64 `json:"block_addr"`
	HeaderAddr  uint64 `json:"header_addr"`
}

func runPadding() error {
	align, headerAlign := uintptr(padAlign), uintptr(padHeaderAlign)
	if !linalloc.IsPowerOfTwo(align) {
		return fmt.Errorf("--align %d is not a power of two", padAlign)
	}
	if !linalloc.IsPowerOfTwo(headerAlign) {
		return fmt.Errorf("--header-align %d is not a power of two", padHeaderAlign)
	}
	if padHeaderSize%padHeaderAlign != 0 {
		return fmt.Errorf("--header-size %d is not a multiple of --header-align %d", padHeaderSize, padHeaderAlign)
	}

	addr := uintptr(padAddr)
	padding := linalloc.PaddingWithHeader(addr, align, uintptr(padHeaderSize), headerAlign)
	res := paddingResult{
		Addr:        padAddr,
		Alignment:   padAlign,
		HeaderSize:  padHeaderSize,
		HeaderAlign: padHeaderAlign,
		AlignedAddr: uint64(linalloc.AlignForward(addr, align)),
		Padding:     uint64(padding),
		BlockAddr:   padAddr + uint64(padding),
		HeaderAddr:  padAddr + uint64(padding) - padHeaderSize,
	}

	if jsonOut {
		return printJSON(res)
	}
	fmt.Printf("aligned address: %d\n", res.AlignedAddr)
	fmt.Printf("padding:         %d\n", res.Padding)
	fmt.Printf("block address:   %d\n", res.BlockAddr)
	if padHeaderSize > 0 {
		fmt.Printf("header address:  %d\n", res.HeaderAddr)
	}
	return nil
}
