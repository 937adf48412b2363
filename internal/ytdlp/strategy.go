package ytdlp

const (
	androidUserAgent = "com.google.android.youtube/19.09.37 (Linux; U; Android 11) gzip"
	iosUserAgent     = "com.google.ios.youtube/19.09.3 (iPhone14,3; U; CPU iOS 15_6 like Mac OS X)"
	tvUserAgent      = "Mozilla/5.0 (SMART-TV; Linux; Tizen 6.0) AppleWebKit/538.1 (KHTML, like Gecko) Version/6.0 TV Safari/538.1"
	webUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Strategy 模拟客户端身份的执行策略
type Strategy struct {
	Name string
	Args []string
}

// DefaultStrategy 非敏感平台使用的隐式策略, 无额外参数
var DefaultStrategy = Strategy{Name: "default"}

// YouTubeStrategies 按成功率从高到低排列的 YouTube 策略.
// 每次调用返回新切片, 调用方可以自由修改.
func YouTubeStrategies() []Strategy {
	return []Strategy{
		{
			Name: "android_client",
			Args: []string{
				"--extractor-args", "youtube:player_client=android",
				"--user-agent", androidUserAgent,
			},
		},
		{
			Name: "ios_client",
			Args: []string{
				"--extractor-args", "youtube:player_client=ios",
				"--user-agent", iosUserAgent,
			},
		},
		{
			Name: "tv_embedded",
			Args: []string{
				"--extractor-args", "youtube:player_client=tv_embedded",
				"--user-agent", tvUserAgent,
				"--no-check-certificates",
				"--sleep-requests", "2",
			},
		},
		{
			Name: "web_client",
			Args: []string{
				"--extractor-args", "youtube:player_client=web",
				"--user-agent", webUserAgent,
				"--no-check-certificates",
				"--sleep-requests", "4",
			},
		},
	}
}
