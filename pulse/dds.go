package pulse

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrUnsupportedDDS is returned for DDS files this loader cannot upload
// as is, e.g. cube maps or formats without a webgpu equivalent.
var ErrUnsupportedDDS = errors.New("unsupported dds file")

const (
	ddsMagic      = 0x20534444 // "DDS "
	ddsHeaderSize = 124
	ddsDX10Size   = 20

	ddsFlagMipMapCount = 0x20000

	ddsPixelFourCC      = 0x4
	ddsPixelRGB         = 0x40
	ddsPixelAlphaPixels = 0x1

	ddsCaps2Cubemap = 0x200
	ddsCaps2Volume  = 0x200000

	ddsDimensionTexture2D = 3
)

type ddsFormat int

const (
	ddsFormatBC1 ddsFormat = iota
	ddsFormatBC2
	ddsFormatBC3
	ddsFormatRGBA8
	ddsFormatBGRA8
)

// blockBytes returns the size of one 4x4 block for compressed formats and
// zero otherwise.
func (f ddsFormat) blockBytes() uint32 {
	switch f {
	case ddsFormatBC1:
		return 8
	case ddsFormatBC2, ddsFormatBC3:
		return 16
	default:
		return 0
	}
}

type ddsLevel struct {
	// size of the level in pixels, rounded up to whole blocks
	width, height uint32

	bytesPerRow uint32
	rows        uint32
	data        []byte
}

type ddsImage struct {
	format ddsFormat
	srgb   bool

	width, height uint32
	levels        []ddsLevel
}

func fourCC(code string) uint32 {
	return binary.LittleEndian.Uint32([]byte(code))
}

// parseDDS reads the header of a DDS file and slices its payload into mip
// levels. Pixel data is not touched.
func parseDDS(buf []byte) (*ddsImage, error) {
	if len(buf) < 4+ddsHeaderSize {
		return nil, fmt.Errorf("dds file too short: %d bytes", len(buf))
	}

	le := binary.LittleEndian

	if le.Uint32(buf) != ddsMagic {
		return nil, errors.New("not a dds file")
	}

	header := buf[4 : 4+ddsHeaderSize]
	if le.Uint32(header[0:]) != ddsHeaderSize || le.Uint32(header[72:]) != 32 {
		return nil, errors.New("invalid dds header size")
	}

	flags := le.Uint32(header[4:])
	height := le.Uint32(header[8:])
	width := le.Uint32(header[12:])
	mipCount := le.Uint32(header[24:])
	caps2 := le.Uint32(header[108:])

	if width == 0 || height == 0 {
		return nil, errors.New("dds file has no pixels")
	}

	if caps2&(ddsCaps2Cubemap|ddsCaps2Volume) != 0 {
		return nil, fmt.Errorf("%w: cube maps and volume textures", ErrUnsupportedDDS)
	}

	if flags&ddsFlagMipMapCount == 0 || mipCount == 0 {
		mipCount = 1
	}

	img := &ddsImage{width: width, height: height}

	offset := 4 + ddsHeaderSize

	pfFlags := le.Uint32(header[76:])

	switch {
	case pfFlags&ddsPixelFourCC != 0:
		switch code := le.Uint32(header[80:]); code {
		case fourCC("DXT1"):
			img.format = ddsFormatBC1
		case fourCC("DXT2"), fourCC("DXT3"):
			img.format = ddsFormatBC2
		case fourCC("DXT4"), fourCC("DXT5"):
			img.format = ddsFormatBC3

		case fourCC("DX10"):
			if len(buf) < offset+ddsDX10Size {
				return nil, errors.New("dds file too short for dx10 header")
			}

			dx10 := buf[offset : offset+ddsDX10Size]
			offset += ddsDX10Size

			if le.Uint32(dx10[4:]) != ddsDimensionTexture2D || le.Uint32(dx10[12:]) > 1 {
				return nil, fmt.Errorf("%w: only single 2D textures", ErrUnsupportedDDS)
			}

			format, srgb, err := ddsDXGIFormat(le.Uint32(dx10[0:]))
			if err != nil {
				return nil, err
			}

			img.format, img.srgb = format, srgb

		default:
			return nil, fmt.Errorf("%w: fourcc %q", ErrUnsupportedDDS, string(header[80:84]))
		}

	case pfFlags&ddsPixelRGB != 0 && le.Uint32(header[84:]) == 32:
		r, g, b := le.Uint32(header[88:]), le.Uint32(header[92:]), le.Uint32(header[96:])

		var alpha uint32
		if pfFlags&ddsPixelAlphaPixels != 0 {
			alpha = le.Uint32(header[100:])
		}

		switch {
		case r == 0x000000ff && g == 0x0000ff00 && b == 0x00ff0000 && (alpha == 0 || alpha == 0xff000000):
			img.format = ddsFormatRGBA8
		case r == 0x00ff0000 && g == 0x0000ff00 && b == 0x000000ff && (alpha == 0 || alpha == 0xff000000):
			img.format = ddsFormatBGRA8
		default:
			return nil, fmt.Errorf("%w: rgb masks %08x %08x %08x", ErrUnsupportedDDS, r, g, b)
		}

	default:
		return nil, fmt.Errorf("%w: pixel format flags %#x", ErrUnsupportedDDS, pfFlags)
	}

	if block := img.format.blockBytes(); block != 0 && (width%4 != 0 || height%4 != 0) {
		return nil, fmt.Errorf("%w: compressed size %dx%d is not a multiple of 4", ErrUnsupportedDDS, width, height)
	}

	data := buf[offset:]

	w, h := width, height
	for range mipCount {
		level := ddsLevelSize(img.format, w, h)

		size := int(level.bytesPerRow * level.rows)
		if len(data) < size {
			return nil, fmt.Errorf("dds payload truncated at mip level %d", len(img.levels))
		}

		level.data = data[:size]
		data = data[size:]

		img.levels = append(img.levels, level)

		if w == 1 && h == 1 {
			break
		}

		w, h = max(1, w/2), max(1, h/2)
	}

	return img, nil
}

func ddsLevelSize(format ddsFormat, width, height uint32) ddsLevel {
	if block := format.blockBytes(); block != 0 {
		blocksWide := max(1, (width+3)/4)
		blocksHigh := max(1, (height+3)/4)

		return ddsLevel{
			width:       blocksWide * 4,
			height:      blocksHigh * 4,
			bytesPerRow: blocksWide * block,
			rows:        blocksHigh,
		}
	}

	return ddsLevel{
		width:       width,
		height:      height,
		bytesPerRow: width * 4,
		rows:        height,
	}
}

func ddsDXGIFormat(dxgi uint32) (ddsFormat, bool, error) {
	switch dxgi {
	case 71:
		return ddsFormatBC1, false, nil
	case 72:
		return ddsFormatBC1, true, nil
	case 74:
		return ddsFormatBC2, false, nil
	case 75:
		return ddsFormatBC2, true, nil
	case 77:
		return ddsFormatBC3, false, nil
	case 78:
		return ddsFormatBC3, true, nil
	case 28:
		return ddsFormatRGBA8, false, nil
	case 29:
		return ddsFormatRGBA8, true, nil
	case 87:
		return ddsFormatBGRA8, false, nil
	case 91:
		return ddsFormatBGRA8, true, nil
	default:
		return 0, false, fmt.Errorf("%w: dxgi format %d", ErrUnsupportedDDS, dxgi)
	}
}
