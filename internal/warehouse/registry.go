package warehouse

// Dimension describes one star-schema dimension: where it lives, its
// surrogate id column and the natural key used for deduplication. The
// loaders consult this registry instead of deriving id columns from table
// names, so no dimension needs special-casing.
type Dimension struct {
	Name     string
	Table    string
	IDColumn string
	Key      []string
}

var (
	Region        = Dimension{Name: "region", Table: "dim_region", IDColumn: "region_id", Key: []string{"name"}}
	Country       = Dimension{Name: "country", Table: "dim_country", IDColumn: "country_id", Key: []string{"country_code"}}
	Platform      = Dimension{Name: "platform", Table: "dim_platform", IDColumn: "platform_id", Key: []string{"name"}}
	Language      = Dimension{Name: "language", Table: "dim_language", IDColumn: "language_id", Key: []string{"language_code"}}
	Category      = Dimension{Name: "category", Table: "dim_category", IDColumn: "category_id", Key: []string{"name"}}
	TrafficSource = Dimension{Name: "traffic_source", Table: "dim_traffic_source", IDColumn: "traffic_source_id", Key: []string{"name"}}
	Creator       = Dimension{Name: "creator", Table: "dim_creator", IDColumn: "creator_id", Key: []string{"handle"}}
	Sound         = Dimension{Name: "sound", Table: "dim_sound", IDColumn: "sound_id", Key: []string{"sound_type", "music_track"}}
	Device        = Dimension{Name: "device", Table: "dim_device", IDColumn: "device_id", Key: []string{"device_type", "device_brand"}}
	TimeBucket    = Dimension{Name: "time_bucket", Table: "dim_time_bucket", IDColumn: "time_bucket_id", Key: []string{"year_month", "season", "event_season"}}
	Hashtag       = Dimension{Name: "hashtag", Table: "dim_hashtag", IDColumn: "hashtag_id", Key: []string{"hashtag"}}
	Tag           = Dimension{Name: "tag", Table: "dim_tag", IDColumn: "tag_id", Key: []string{"tag"}}
)

const (
	FactTable   = "fact_video"
	TrendsTable = "fact_google_trends"
)

// AllTables lists every table touched by the reload, bridges and fact first.
// Truncation order does not actually matter under disabled constraint checks.
var AllTables = []string{
	"bridge_video_hashtag", "bridge_video_tag", FactTable,
	"dim_country", "dim_platform", "dim_language", "dim_category",
	"dim_traffic_source", "dim_creator", "dim_sound", "dim_device",
	"dim_time_bucket", "dim_hashtag", "dim_tag", "dim_region",
}
