// Package mp4gpmf extracts the raw, concatenated GPMF byte buffer out
// of a GoPro MP4 file — the "MP4 demuxer" collaborator that spec.md §6
// places outside the GPMF decoding core. It never interprets GPMF
// itself; it only walks MP4 box structure to find the `gpmd` timed
// metadata track and read its samples in presentation order.
package mp4gpmf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	mp4 "github.com/abema/go-mp4"
)

// ErrNoGPMFTrack is returned when the MP4 file has no `gpmd` timed
// metadata track.
var ErrNoGPMFTrack = errors.New("mp4gpmf: no GPMF (gpmd) track found")

const gpmdFourCC = "gpmd"

// sampleInfo holds the byte offset and size of one GPMF sample chunk
// within the MP4 file.
type sampleInfo struct {
	offset uint64
	size   uint32
}

// ExtractTrack opens the MP4 file at path, locates its `gpmd` timed
// metadata track, and returns the concatenation of every sample's raw
// bytes in presentation order — ready to hand to gpmf.Parse.
func ExtractTrack(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ExtractFromReader(f)
}

// ExtractFromReader is ExtractTrack over an already-open ReadSeeker.
func ExtractFromReader(rs io.ReadSeeker) ([]byte, error) {
	samples, err := findGPMFTrack(rs)
	if err != nil {
		return nil, err
	}

	var out []byte
	for i, s := range samples {
		buf := make([]byte, s.size)
		if _, err := rs.Seek(int64(s.offset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("seeking to sample %d at offset %d: %w", i, s.offset, err)
		}
		if _, err := io.ReadFull(rs, buf); err != nil {
			return nil, fmt.Errorf("reading sample %d: %w", i, err)
		}
		out = append(out, buf...)
	}
	return out, nil
}

// findGPMFTrack walks the MP4 box tree for every track's sample table
// (stbl) and returns the flat sample list of the first one whose stsd
// carries a `gpmd` sample entry.
func findGPMFTrack(rs io.ReadSeeker) ([]sampleInfo, error) {
	stbls, err := mp4.ExtractBox(rs, nil, mp4.BoxPath{
		mp4.BoxTypeMoov(), mp4.BoxTypeTrak(), mp4.BoxTypeMdia(),
		mp4.BoxTypeMinf(), mp4.BoxTypeStbl(),
	})
	if err != nil {
		return nil, fmt.Errorf("mp4gpmf: reading container structure: %w", err)
	}

	for _, stbl := range stbls {
		ok, err := hasGPMDSampleEntry(rs, stbl)
		if err != nil || !ok {
			continue
		}
		samples, err := buildSampleTable(rs, stbl)
		if err != nil {
			return nil, fmt.Errorf("mp4gpmf: building sample table: %w", err)
		}
		return samples, nil
	}
	return nil, ErrNoGPMFTrack
}

// hasGPMDSampleEntry reports whether stbl's stsd box contains a sample
// entry of type "gpmd".
func hasGPMDSampleEntry(rs io.ReadSeeker, stbl *mp4.BoxInfo) (bool, error) {
	stsds, err := mp4.ExtractBox(rs, stbl, mp4.BoxPath{mp4.BoxTypeStsd()})
	if err != nil || len(stsds) == 0 {
		return false, ErrNoGPMFTrack
	}
	stsd := stsds[0]

	payloadSize := int(stsd.Size - stsd.HeaderSize)
	data := make([]byte, payloadSize)
	if _, err := rs.Seek(int64(stsd.Offset+stsd.HeaderSize), io.SeekStart); err != nil {
		return false, fmt.Errorf("seeking to stsd payload: %w", err)
	}
	if _, err := io.ReadFull(rs, data); err != nil {
		return false, fmt.Errorf("reading stsd payload: %w", err)
	}

	const stsdPayloadHeader = 8 // version(1) + flags(3) + entryCount(4)
	if len(data) < stsdPayloadHeader {
		return false, nil
	}

	entryCount := binary.BigEndian.Uint32(data[4:8])
	pos := stsdPayloadHeader
	for i := uint32(0); i < entryCount; i++ {
		if pos+8 > len(data) {
			break
		}
		entrySize := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		if entrySize < 8 || pos+entrySize > len(data) {
			break
		}
		if string(data[pos+4:pos+8]) == gpmdFourCC {
			return true, nil
		}
		pos += entrySize
	}
	return false, nil
}

// buildSampleTable constructs a flat list of sample offsets and sizes
// from the stco/co64, stsc, and stsz boxes within stbl.
func buildSampleTable(rs io.ReadSeeker, stbl *mp4.BoxInfo) ([]sampleInfo, error) {
	chunkOffsets, err := readChunkOffsets(rs, stbl)
	if err != nil {
		return nil, err
	}
	stscEntries, err := readStsc(rs, stbl)
	if err != nil {
		return nil, err
	}
	entrySizes, constantSize, sampleCount, err := readStsz(rs, stbl)
	if err != nil {
		return nil, err
	}

	samples := make([]sampleInfo, 0, sampleCount)
	sampleIdx := 0
	for chunkIdx := range chunkOffsets {
		spc := lookupSamplesPerChunk(stscEntries, uint32(chunkIdx+1)) // stsc is 1-based
		offset := chunkOffsets[chunkIdx]
		for s := uint32(0); s < spc && sampleIdx < int(sampleCount); s++ {
			var size uint32
			if constantSize != 0 {
				size = constantSize
			} else {
				size = entrySizes[sampleIdx]
			}
			samples = append(samples, sampleInfo{offset: offset, size: size})
			offset += uint64(size)
			sampleIdx++
		}
	}
	return samples, nil
}

func readChunkOffsets(rs io.ReadSeeker, stbl *mp4.BoxInfo) ([]uint64, error) {
	if boxes, err := mp4.ExtractBoxWithPayload(rs, stbl, mp4.BoxPath{mp4.BoxTypeStco()}); err == nil && len(boxes) > 0 {
		if stco, ok := boxes[0].Payload.(*mp4.Stco); ok {
			offsets := make([]uint64, len(stco.ChunkOffset))
			for i, off := range stco.ChunkOffset {
				offsets[i] = uint64(off)
			}
			return offsets, nil
		}
	}

	boxes, err := mp4.ExtractBoxWithPayload(rs, stbl, mp4.BoxPath{mp4.BoxTypeCo64()})
	if err != nil || len(boxes) == 0 {
		return nil, errors.New("mp4gpmf: no chunk offset box (stco/co64)")
	}
	co64, ok := boxes[0].Payload.(*mp4.Co64)
	if !ok {
		return nil, errors.New("mp4gpmf: invalid co64 payload")
	}
	return co64.ChunkOffset, nil
}

func readStsc(rs io.ReadSeeker, stbl *mp4.BoxInfo) ([]mp4.StscEntry, error) {
	boxes, err := mp4.ExtractBoxWithPayload(rs, stbl, mp4.BoxPath{mp4.BoxTypeStsc()})
	if err != nil || len(boxes) == 0 {
		return nil, errors.New("mp4gpmf: no stsc box")
	}
	stsc, ok := boxes[0].Payload.(*mp4.Stsc)
	if !ok {
		return nil, errors.New("mp4gpmf: invalid stsc payload")
	}
	return stsc.Entries, nil
}

func readStsz(rs io.ReadSeeker, stbl *mp4.BoxInfo) ([]uint32, uint32, uint32, error) {
	boxes, err := mp4.ExtractBoxWithPayload(rs, stbl, mp4.BoxPath{mp4.BoxTypeStsz()})
	if err != nil || len(boxes) == 0 {
		return nil, 0, 0, errors.New("mp4gpmf: no stsz box")
	}
	stsz, ok := boxes[0].Payload.(*mp4.Stsz)
	if !ok {
		return nil, 0, 0, errors.New("mp4gpmf: invalid stsz payload")
	}
	return stsz.EntrySize, stsz.SampleSize, stsz.SampleCount, nil
}

// lookupSamplesPerChunk finds the samples-per-chunk count for a
// 1-based chunk number from the stsc run-length table.
func lookupSamplesPerChunk(entries []mp4.StscEntry, chunkNumber uint32) uint32 {
	var spc uint32
	for _, e := range entries {
		if e.FirstChunk > chunkNumber {
			break
		}
		spc = e.SamplesPerChunk
	}
	return spc
}
