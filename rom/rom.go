// Package rom is the flat binary program image: big-endian 16-bit
// instruction words, loaded contiguously at cpu.PROGRAM_START.
package rom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"iter"

	"github.com/lunixbochs/struc"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrImageOdd = errors.New(f("image length is odd"))
)

// CAPACITY is the largest image, in bytes, that fits in memory.
const CAPACITY = cpu.MEMORY_SIZE - cpu.PROGRAM_START

// Image is a program image.
type Image struct {
	Words []uint16 // Instruction words in load order.
}

// FromCodes creates an image from a sequence of instruction words.
func FromCodes(codes iter.Seq[cpu.Code]) (img *Image) {
	img = &Image{}
	for code := range codes {
		img.Words = append(img.Words, uint16(code))
	}

	return
}

// Len returns the length of the image in bytes.
func (img *Image) Len() int {
	return len(img.Words) * 2
}

// End returns the address just past the last byte of the loaded image.
func (img *Image) End() int {
	return cpu.PROGRAM_START + img.Len()
}

// Fits returns cpu.ErrProgramSize if the image does not fit in memory.
func (img *Image) Fits() (err error) {
	if img.Len() > CAPACITY {
		err = cpu.ErrProgramSize
	}
	return
}

// Codes iterates over the load address and code of each word.
func (img *Image) Codes() iter.Seq2[uint16, cpu.Code] {
	return func(yield func(addr uint16, code cpu.Code) bool) {
		for n, word := range img.Words {
			if !yield(uint16(cpu.PROGRAM_START+n*2), cpu.Code(word)) {
				return
			}
		}
	}
}

// MarshalBinary packs the image into bytes ready to load.
func (img *Image) MarshalBinary() (data []byte, err error) {
	err = img.Fits()
	if err != nil {
		return
	}
	if len(img.Words) == 0 {
		data = []byte{}
		return
	}

	var buf bytes.Buffer
	err = struc.PackWithOrder(&buf, img.Words, binary.BigEndian)
	if err != nil {
		return
	}

	data = buf.Bytes()
	return
}

// UnmarshalBinary replaces the image with the words packed in data.
func (img *Image) UnmarshalBinary(data []byte) (err error) {
	if len(data)%2 != 0 {
		err = ErrImageOdd
		return
	}
	if len(data) > CAPACITY {
		err = cpu.ErrProgramSize
		return
	}

	words := make([]uint16, len(data)/2)
	if len(words) > 0 {
		err = struc.UnpackWithOrder(bytes.NewReader(data), words, binary.BigEndian)
		if err != nil {
			return
		}
	}

	img.Words = words
	return
}
