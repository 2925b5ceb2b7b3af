// Package metadata embeds show and track metadata into completed downloads
// so offline files remain identifiable outside the app.
package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"go.uber.org/zap"

	"github.com/tapedeck/tapedeck-go/internal/catalog"
)

// Tagger writes tags into downloaded audio files. Show metadata comes from
// the catalog; failures to fetch it degrade to track-only tags.
type Tagger struct {
	cat     catalog.Client
	artwork *ArtworkFetcher
	logger  *zap.Logger
}

// NewTagger builds a tagger. artwork may be nil to skip embedded covers.
func NewTagger(cat catalog.Client, artwork *ArtworkFetcher, logger *zap.Logger) *Tagger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tagger{cat: cat, artwork: artwork, logger: logger}
}

// trackTags is the field set written into a file.
type trackTags struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	Year        int
	TrackNumber int
	ArtworkData []byte
	ArtworkMIME string
}

// TagFile embeds metadata for track into the file at path. Unsupported
// containers are skipped without error.
func (t *Tagger) TagFile(ctx context.Context, path string, track catalog.Track) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3", ".flac":
	default:
		return nil
	}

	tags := t.buildTags(ctx, track)

	switch ext {
	case ".mp3":
		return tagMP3(path, tags)
	case ".flac":
		return tagFLAC(path, tags)
	}
	return nil
}

func (t *Tagger) buildTags(ctx context.Context, track catalog.Track) *trackTags {
	tags := &trackTags{
		Title:       track.Title,
		Genre:       "Live",
		TrackNumber: TrackNumberFromFilename(track.Filename),
	}
	if tags.Title == "" {
		tags.Title = track.Filename
	}

	if t.cat != nil {
		show, err := t.cat.GetShow(ctx, track.ShowID)
		if err != nil {
			t.logger.Debug("Show lookup for tagging failed",
				zap.String("show", track.ShowID), zap.Error(err))
		} else {
			tags.Artist = show.Artist
			tags.Album = showAlbumTitle(show)
			tags.Year = yearFromDate(show.Date)
		}
	}

	if t.artwork != nil {
		data, err := t.artwork.Artwork(ctx, track.ShowID)
		if err != nil {
			t.logger.Debug("Artwork fetch for tagging failed",
				zap.String("show", track.ShowID), zap.Error(err))
		} else {
			tags.ArtworkData = data
			tags.ArtworkMIME = "image/jpeg"
		}
	}

	return tags
}

// showAlbumTitle renders a show as an album name, e.g.
// "1977-05-08 Barton Hall, Ithaca, NY".
func showAlbumTitle(show *catalog.Show) string {
	parts := make([]string, 0, 3)
	if show.Date != "" {
		parts = append(parts, show.Date)
	}
	if show.Venue != "" {
		parts = append(parts, show.Venue)
	}
	if show.City != "" {
		parts = append(parts, show.City)
	}
	return strings.Join(parts, " ")
}

// TrackNumberFromFilename extracts the leading track number from names like
// "05 Scarlet Begonias.mp3" or "gd77-05-08d1t03.mp3".
func TrackNumberFromFilename(filename string) int {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	// Leading digits win.
	digits := leadingDigits(base)
	if digits != "" {
		if n, err := strconv.Atoi(digits); err == nil && n > 0 {
			return n
		}
	}

	// Taper convention: ...dXtYY
	if i := strings.LastIndex(strings.ToLower(base), "t"); i >= 0 && i+1 < len(base) {
		if n, err := strconv.Atoi(leadingDigits(base[i+1:])); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func yearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func tagMP3(path string, tags *trackTags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open mp3 for tagging: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetTitle(tags.Title)
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if tags.Genre != "" {
		tag.SetGenre(tags.Genre)
	}
	if tags.Year > 0 {
		tag.SetYear(strconv.Itoa(tags.Year))
	}
	if tags.TrackNumber > 0 {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"),
			id3v2.EncodingUTF8, strconv.Itoa(tags.TrackNumber))
	}
	if len(tags.ArtworkData) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    tags.ArtworkMIME,
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     tags.ArtworkData,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save mp3 tags: %w", err)
	}
	return nil
}

func tagFLAC(path string, tags *trackTags) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse flac for tagging: %w", err)
	}

	var cmtBlock *flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			cmtBlock = block
			break
		}
	}
	if cmtBlock == nil {
		cmtBlock = &flac.MetaDataBlock{Type: flac.VorbisComment}
		f.Meta = append(f.Meta, cmtBlock)
	}

	cmt, err := flacvorbis.ParseFromMetaDataBlock(*cmtBlock)
	if err != nil {
		cmt = flacvorbis.New()
	}

	cmt.Add("TITLE", tags.Title)
	if tags.Artist != "" {
		cmt.Add("ARTIST", tags.Artist)
	}
	if tags.Album != "" {
		cmt.Add("ALBUM", tags.Album)
	}
	if tags.Genre != "" {
		cmt.Add("GENRE", tags.Genre)
	}
	if tags.Year > 0 {
		cmt.Add("DATE", strconv.Itoa(tags.Year))
	}
	if tags.TrackNumber > 0 {
		cmt.Add("TRACKNUMBER", strconv.Itoa(tags.TrackNumber))
	}

	res := cmt.Marshal()
	cmtBlock.Data = res.Data

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save flac tags: %w", err)
	}
	return nil
}
