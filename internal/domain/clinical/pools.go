package clinical

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NameEntry is one fabricated Japanese name with its kana and roman
// transcriptions.
type NameEntry struct {
	Kanji string `yaml:"kanji"`
	Kana  string `yaml:"kana"`
	Roman string `yaml:"roman"`
}

// AllergenEntry is one allergen the fabricator can assign to a patient.
type AllergenEntry struct {
	TypeCode   string `yaml:"type"`
	Code       string `yaml:"code"`
	Name       string `yaml:"name"`
	CodeSystem string `yaml:"system"`
}

// Pools holds the vocabularies the fabricator draws from. The zero
// value is unusable; start from DefaultPools and override from a YAML
// file when the defaults do not fit.
type Pools struct {
	LastNames        []NameEntry     `yaml:"last_names"`
	FirstNamesMale   []NameEntry     `yaml:"first_names_male"`
	FirstNamesFemale []NameEntry     `yaml:"first_names_female"`
	Allergens        []AllergenEntry `yaml:"allergens"`
	Departments      []string        `yaml:"departments"`
	Wards            []string        `yaml:"wards"`
	Rooms            []string        `yaml:"rooms"`
	Beds             []string        `yaml:"beds"`
	Prefectures      []string        `yaml:"prefectures"`
	Cities           []string        `yaml:"cities"`
	Towns            []string        `yaml:"towns"`
	Companies        []string        `yaml:"companies"`
}

// LoadPools reads a YAML pool file and overlays it on the defaults.
// Only the sections present in the file are replaced.
func LoadPools(path string) (*Pools, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool file: %w", err)
	}
	var overlay Pools
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("parse pool file %s: %w", path, err)
	}
	pools := DefaultPools()
	if len(overlay.LastNames) > 0 {
		pools.LastNames = overlay.LastNames
	}
	if len(overlay.FirstNamesMale) > 0 {
		pools.FirstNamesMale = overlay.FirstNamesMale
	}
	if len(overlay.FirstNamesFemale) > 0 {
		pools.FirstNamesFemale = overlay.FirstNamesFemale
	}
	if len(overlay.Allergens) > 0 {
		pools.Allergens = overlay.Allergens
	}
	if len(overlay.Departments) > 0 {
		pools.Departments = overlay.Departments
	}
	if len(overlay.Wards) > 0 {
		pools.Wards = overlay.Wards
	}
	if len(overlay.Rooms) > 0 {
		pools.Rooms = overlay.Rooms
	}
	if len(overlay.Beds) > 0 {
		pools.Beds = overlay.Beds
	}
	if len(overlay.Prefectures) > 0 {
		pools.Prefectures = overlay.Prefectures
	}
	if len(overlay.Cities) > 0 {
		pools.Cities = overlay.Cities
	}
	if len(overlay.Towns) > 0 {
		pools.Towns = overlay.Towns
	}
	if len(overlay.Companies) > 0 {
		pools.Companies = overlay.Companies
	}
	return pools, nil
}

// DefaultPools returns the built-in fabrication vocabularies.
func DefaultPools() *Pools {
	return &Pools{
		LastNames: []NameEntry{
			{"佐藤", "サトウ", "Sato"},
			{"鈴木", "スズキ", "Suzuki"},
			{"高橋", "タカハシ", "Takahashi"},
			{"田中", "タナカ", "Tanaka"},
			{"伊藤", "イトウ", "Ito"},
			{"渡辺", "ワタナベ", "Watanabe"},
			{"山本", "ヤマモト", "Yamamoto"},
			{"中村", "ナカムラ", "Nakamura"},
			{"小林", "コバヤシ", "Kobayashi"},
			{"加藤", "カトウ", "Kato"},
			{"吉田", "ヨシダ", "Yoshida"},
			{"山田", "ヤマダ", "Yamada"},
			{"佐々木", "ササキ", "Sasaki"},
			{"松本", "マツモト", "Matsumoto"},
			{"井上", "イノウエ", "Inoue"},
			{"木村", "キムラ", "Kimura"},
			{"林", "ハヤシ", "Hayashi"},
			{"斎藤", "サイトウ", "Saito"},
			{"清水", "シミズ", "Shimizu"},
			{"山口", "ヤマグチ", "Yamaguchi"},
		},
		FirstNamesMale: []NameEntry{
			{"太郎", "タロウ", "Taro"},
			{"大輝", "ダイキ", "Daiki"},
			{"翔太", "ショウタ", "Shota"},
			{"健一", "ケンイチ", "Kenichi"},
			{"拓也", "タクヤ", "Takuya"},
			{"直樹", "ナオキ", "Naoki"},
			{"浩", "ヒロシ", "Hiroshi"},
			{"誠", "マコト", "Makoto"},
			{"隆", "タカシ", "Takashi"},
			{"蓮", "レン", "Ren"},
			{"悠真", "ユウマ", "Yuma"},
			{"陽向", "ヒナタ", "Hinata"},
		},
		FirstNamesFemale: []NameEntry{
			{"花子", "ハナコ", "Hanako"},
			{"美咲", "ミサキ", "Misaki"},
			{"陽菜", "ヒナ", "Hina"},
			{"さくら", "サクラ", "Sakura"},
			{"葵", "アオイ", "Aoi"},
			{"結衣", "ユイ", "Yui"},
			{"優子", "ユウコ", "Yuko"},
			{"恵", "メグミ", "Megumi"},
			{"直美", "ナオミ", "Naomi"},
			{"綾", "アヤ", "Aya"},
			{"莉子", "リコ", "Riko"},
			{"凛", "リン", "Rin"},
		},
		Allergens: []AllergenEntry{
			{"DA", "1", "ペニシリン", "99XYZ"},
			{"DA", "2", "アスピリン", "99XYZ"},
			{"DA", "3", "スルファ剤", "99XYZ"},
			{"DA", "4", "セフェム系抗生物質", "99XYZ"},
			{"FA", "J9FA21180000", "ピーナッツ", "J-FAGY"},
			{"LA", "J9NK12000000", "花粉", "J-FAGY"},
			{"AA", "J9NJ12150000", "猫", "J-FAGY"},
			{"AA", "J9NJ12110000", "犬", "J-FAGY"},
			{"PA", "J9NK12150000", "ブタクサ", "J-FAGY"},
			{"MA", "J9NP14110000", "ラテックス", "J-FAGY"},
			{"MC", "J9NT11000000", "アルコール", "J-FAGY"},
			{"EA", "J9NM12000000", "ダニ", "J-FAGY"},
			{"EA", "J9NM13110000", "ハウスダスト", "J-FAGY"},
			{"FA", "J9FC12000000", "貝類", "J-FAGY"},
			{"DA", "13", "非ステロイド性抗炎症薬", "99XYZ"},
			{"DA", "14", "アセトアミノフェン", "99XYZ"},
			{"DA", "15", "フロセミド", "99XYZ"},
		},
		Departments: []string{
			"01", "011", "012", "018", "02", "03", "04", "05", "051",
			"06", "061", "062", "08", "081", "09", "091", "092",
			"10", "101", "102", "105", "11", "111", "112",
		},
		Wards: []string{
			"1A", "1B", "2A", "2B", "3A", "3B", "4A", "4B", "5A", "5B",
			"6A", "6B", "7A", "7B", "8A", "8B", "9A", "9B",
			"10A", "10B", "11A", "11B", "12A", "12B",
		},
		Rooms: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
		Beds:  []string{"1", "2", "3", "4"},
		Prefectures: []string{
			"埼玉県", "神奈川県", "千葉県", "茨城県", "栃木県", "群馬県", "山梨県",
		},
		Cities: []string{
			"川口市", "さいたま市大宮区", "横浜市港北区", "千葉市中央区",
			"水戸市", "宇都宮市", "前橋市", "甲府市", "台東区", "文京区",
		},
		Towns: []string{
			"芝公園", "旭町", "本町", "緑町", "桜台", "栄町", "若葉町", "末広町",
		},
		Companies: []string{
			"株式会社山田製作所", "有限会社佐藤商事", "株式会社東都物産",
			"鈴木工業株式会社", "株式会社中央システムズ",
		},
	}
}
