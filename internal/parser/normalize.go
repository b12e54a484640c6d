package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize 把原始文档文本规整为字段提取使用的形式：
//  1. NFKC 兼容分解，全角字母数字、连字等会先折成 ASCII；
//  2. 只保留 ASCII 字母数字、空白、'.' 和 '@'；
//  3. 每一段连续空白（含换行）压成一个空格。
//
// 与只做 ASCII 过滤的做法不同，全角的 "Ｓｋｉｌｌｓ" 折叠后会命中区分大小写的 Skills 边界，
// 而不是被整段丢弃。
// 首尾空白不裁剪。对已规整过的文本再次调用结果不变。
func Normalize(text string) string {
	folded := norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(folded))
	inSpace := false
	for _, r := range folded {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		if !keepRune(r) {
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func keepRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '@':
		return true
	}
	return false
}
