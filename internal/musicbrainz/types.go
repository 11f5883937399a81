package musicbrainz

// Recording is a recording search hit on one of its releases.
type Recording struct {
	ID          string
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	ReleaseID   string
	Track       int
	Year        int
	Score       int // search relevance (0-100)
}

// Release is a release search hit.
type Release struct {
	ID     string
	Title  string
	Artist string
	Year   int
	Score  int
}

type artistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
	JoinPhrase string `json:"joinphrase"`
}

type recordingSearchResponse struct {
	Recordings []recordingResult `json:"recordings"`
}

type recordingResult struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Score        int             `json:"score"`
	ArtistCredit []artistCredit  `json:"artist-credit"`
	Releases     []releaseResult `json:"releases"`
}

type releaseSearchResponse struct {
	Releases []releaseResult `json:"releases"`
}

type releaseResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Score        int            `json:"score"`
	Date         string         `json:"date"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Media        []medium       `json:"media"`
}

type medium struct {
	Position int           `json:"position"`
	Tracks   []mediumTrack `json:"track"`
}

type mediumTrack struct {
	Number   string `json:"number"`
	Position int    `json:"position"`
}
