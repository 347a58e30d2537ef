package sources

// YouTube Data API v3 support is split across files by responsibility:
//   youtube_api.go      shared client: key fallback, pacing, retries, error mapping
//   youtube_comments.go commentThreads.list as a comments.PageSource
//   youtube_search.go   video discovery, titles and link parsing
