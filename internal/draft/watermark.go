package draft

// watermarkTexts are appended, in this order, when the watermark is enabled.
var watermarkTexts = []string{
	`<p>Пост сделан через <a href="https://github.com/saber-nyan/ImagePoster4DTF/releases?ref=dtf.ru" target="_blank">ImagePoster4DTF</a> при поддержке <a href="https://dtf.ru/u/69160-saber-nyan" target="_blank">saber-nyan</a> и <a href="https://dtf.ru/u/335947" target="_blank">Deku</a>.</p>`,
	`<p>Банда хейтеров очобы создана <a href="https://dtf.ru/u/203649" target="_blank">Данилом Спарковым</a>.</p>`,
	`<p><a href="https://dtf.ru/tag/thisPostWasMadeByOchobaHatersGang">#thisPostWasMadeByOchobaHatersGang</a></p>`,
}

// WatermarkTexts returns a copy of the fixed watermark paragraphs.
func WatermarkTexts() []string {
	out := make([]string, len(watermarkTexts))
	copy(out, watermarkTexts)
	return out
}
