package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultPageHTML = `
<html><body>
<div class="cassetteitem">
  <div class="cassetteitem_content-title">グランメゾン渋谷</div>
  <ul>
    <li class="cassetteitem_detail-col1">東京都渋谷区神南1-2-3</li>
    <li class="cassetteitem_detail-col2">山手線/渋谷駅 歩8分</li>
    <li class="cassetteitem_detail-col3">築12年 3階建</li>
  </ul>
  <div class="cassetteitem_object-item"><img src="/img/gm-shibuya.jpg"></div>
  <table><tbody>
    <tr>
      <td class="cassetteitem_other-floor">2階</td>
      <td>
        <span class="cassetteitem_other-emphasis">8.5万円</span>
        <span class="cassetteitem_price--administration">3,000円</span>
        <span class="cassetteitem_price--deposit">8.5万円</span>
        <span class="cassetteitem_price--gratuity">-</span>
        <span class="cassetteitem_madori">1K</span>
        <span class="cassetteitem_menseki">25.5m²</span>
      </td>
      <td class="cassetteitem_other"><a href="/chintai/jnc_000011111111/">詳細を見る</a></td>
    </tr>
    <tr>
      <td class="cassetteitem_other-floor">5階</td>
      <td>
        <span class="cassetteitem_other-emphasis">9.2万円</span>
        <span class="cassetteitem_price--administration">5,000円</span>
        <span class="cassetteitem_price--deposit">9.2万円</span>
        <span class="cassetteitem_price--gratuity">9.2万円</span>
        <span class="cassetteitem_madori">1DK</span>
        <span class="cassetteitem_menseki">30m²</span>
      </td>
      <td class="cassetteitem_other"><a href="/chintai/jnc_000022222222/"></a></td>
    </tr>
  </tbody></table>
</div>
<div class="cassetteitem">
  <div class="cassetteitem_content-title">空きなしマンション</div>
  <ul>
    <li class="cassetteitem_detail-col1">東京都渋谷区桜丘町9-9</li>
    <li class="cassetteitem_detail-col2">渋谷駅 歩3分</li>
    <li class="cassetteitem_detail-col3">築2年</li>
  </ul>
</div>
<div class="cassetteitem">
  <div class="cassetteitem_content-title">コーポ代々木</div>
  <ul>
    <li class="cassetteitem_detail-col1">東京都渋谷区代々木5-6-7</li>
    <li class="cassetteitem_detail-col2">代々木駅 歩5分</li>
    <li class="cassetteitem_detail-col3">築25年</li>
  </ul>
  <table><tbody>
    <tr>
      <td class="cassetteitem_other-floor">1階</td>
      <td>
        <span class="cassetteitem_other-emphasis">応相談</span>
        <span class="cassetteitem_price--administration">2,000円</span>
        <span class="cassetteitem_price--deposit">なし</span>
        <span class="cassetteitem_price--gratuity">-</span>
        <span class="cassetteitem_madori">2DK</span>
        <span class="cassetteitem_menseki">40.1m²</span>
      </td>
      <td class="cassetteitem_other"><a href="/chintai/jnc_000033333333/"></a></td>
    </tr>
  </tbody></table>
</div>
</body></html>
`

func newTestScraper(t *testing.T) *SuumoScraper {
	t.Helper()
	s, err := NewSuumoScraper(SuumoConfig{}, nil)
	require.NoError(t, err)
	return s
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParsePage(t *testing.T) {
	s := newTestScraper(t)
	listings := s.parsePage(parseDoc(t, resultPageHTML))

	// Two rows in the first block, none in the empty block, one in the
	// last, in page order.
	require.Len(t, listings, 3)

	first := listings[0]
	assert.Equal(t, "000011111111", first.ID)
	assert.Equal(t, "グランメゾン渋谷", first.Name)
	assert.Equal(t, "東京都渋谷区神南1-2-3", first.Address)
	assert.Equal(t, "山手線/渋谷", first.Station)
	assert.Equal(t, 8, first.WalkMinutes)
	assert.Equal(t, 8, first.Rent)
	assert.Equal(t, 3000, first.ManagementFee)
	assert.Equal(t, 8, first.Deposit)
	assert.Equal(t, 0, first.KeyMoney)
	assert.Equal(t, "1K", first.Layout)
	assert.InDelta(t, 25.5, first.Size, 0.001)
	assert.Equal(t, 12, first.AgeYears)
	assert.Equal(t, "2階", first.Floor)
	assert.Equal(t, "https://suumo.jp/chintai/jnc_000011111111/", first.URL)
	assert.Equal(t, "https://suumo.jp/img/gm-shibuya.jpg", first.ImageURL)
	assert.NotZero(t, first.UpdatedAt)

	second := listings[1]
	assert.Equal(t, "000022222222", second.ID)
	assert.Equal(t, 9, second.Rent)
	assert.Equal(t, 9, second.KeyMoney)
	assert.Equal(t, "グランメゾン渋谷", second.Name)
}

// A rent cell the patterns cannot match yields a zero rent while every
// other field of the same listing is still extracted.
func TestParsePageMalformedRentLeavesOtherFieldsIntact(t *testing.T) {
	s := newTestScraper(t)
	listings := s.parsePage(parseDoc(t, resultPageHTML))
	require.Len(t, listings, 3)

	damaged := listings[2]
	assert.Equal(t, 0, damaged.Rent)
	assert.Equal(t, "コーポ代々木", damaged.Name)
	assert.Equal(t, "東京都渋谷区代々木5-6-7", damaged.Address)
	assert.Equal(t, "代々木", damaged.Station)
	assert.Equal(t, 5, damaged.WalkMinutes)
	assert.Equal(t, 2000, damaged.ManagementFee)
	assert.Equal(t, 25, damaged.AgeYears)
	assert.Equal(t, "https://suumo.jp/chintai/jnc_000033333333/", damaged.URL)
}

func TestParsePageNoBlocks(t *testing.T) {
	s := newTestScraper(t)
	listings := s.parsePage(parseDoc(t, "<html><body><p>該当する物件がありません</p></body></html>"))
	assert.Empty(t, listings)
}

func TestHasNextPage(t *testing.T) {
	withNext := `<html><body>
		<div class="pagination">
			<p class="pagination-parts"><a href="?page=1">前へ</a></p>
			<p class="pagination-parts"><a href="?page=3">次へ</a></p>
		</div>
	</body></html>`
	assert.True(t, hasNextPage(parseDoc(t, withNext)))

	lastPage := `<html><body>
		<div class="pagination">
			<p class="pagination-parts"><a href="?page=1">前へ</a></p>
		</div>
	</body></html>`
	assert.False(t, hasNextPage(parseDoc(t, lastPage)))

	assert.False(t, hasNextPage(parseDoc(t, "<html><body></body></html>")))
}

func TestAbsoluteURL(t *testing.T) {
	s := newTestScraper(t)

	resolved, err := s.absoluteURL("/chintai/jnc_000012345678/")
	require.NoError(t, err)
	assert.Equal(t, "https://suumo.jp/chintai/jnc_000012345678/", resolved)

	resolved, err = s.absoluteURL("https://example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", resolved)

	resolved, err = s.absoluteURL("")
	require.NoError(t, err)
	assert.Equal(t, "", resolved)
}
