package ytdlp

// BuildFormatSelector 根据清晰度和格式计算 --format 选择器
func BuildFormatSelector(quality, format string) string {
	switch format {
	case "mp3":
		return "bestaudio/best"
	case "mp4":
		switch quality {
		case "best":
			return "best[ext=mp4]/best"
		case "worst":
			return "worst[ext=mp4]/worst"
		case "bestvideo":
			return "bestvideo[ext=mp4]/bestvideo"
		case "bestaudio":
			return "bestaudio/best"
		}
	case "webm":
		return "best[ext=webm]/best"
	}
	return "best"
}
